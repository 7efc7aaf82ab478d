package wallet

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/term"
)

// TerminalPrompt reads a passphrase from the terminal on fd without echo.
func TerminalPrompt(fd int, out io.Writer) PassphrasePrompt {
	return func(account common.Address) (string, error) {
		if !term.IsTerminal(fd) {
			return "", fmt.Errorf("no terminal to prompt for %s", account.Hex())
		}
		fmt.Fprintf(out, "Passphrase for %s: ", account.Hex())
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(raw), "\r\n"), nil
	}
}
