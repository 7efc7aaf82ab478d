package wallet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"vaultScope/internal/model"
)

func TestRPCErrorMapsRejection(t *testing.T) {
	err := fmt.Errorf("connect: %w", &RPCError{Code: CodeUserRejected, Message: "denied"})
	if !errors.Is(err, model.ErrUserRejected) {
		t.Fatalf("4001 should match ErrUserRejected")
	}
	if ErrorCode(err) != CodeUserRejected {
		t.Fatalf("code not extracted: %d", ErrorCode(err))
	}

	unknown := &RPCError{Code: CodeUnrecognizedChain, Message: "unknown"}
	if errors.Is(unknown, model.ErrUserRejected) {
		t.Fatalf("4902 must not match ErrUserRejected")
	}
	if ErrorCode(errors.New("plain")) != 0 {
		t.Fatalf("plain errors have no code")
	}
}

func TestNetworkHexChainID(t *testing.T) {
	n := Network{ChainID: big.NewInt(56)}
	if got := n.HexChainID(); got != "0x38" {
		t.Fatalf("hex chain id mismatch: %s", got)
	}
	if got := (Network{}).HexChainID(); got != "0x0" {
		t.Fatalf("empty chain id mismatch: %s", got)
	}
}

func TestOpenKeystoreWithoutAccounts(t *testing.T) {
	_, err := OpenKeystore(context.Background(), KeystoreConfig{Dir: t.TempDir(), LightScrypt: true}, nil)
	if !errors.Is(err, model.ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
	_, err = OpenKeystore(context.Background(), KeystoreConfig{}, nil)
	if !errors.Is(err, model.ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider for empty dir, got %v", err)
	}
}

func TestTerminalPromptWithoutTerminal(t *testing.T) {
	var out bytes.Buffer
	prompt := TerminalPrompt(-1, &out)
	if _, err := prompt(common.HexToAddress("0x1")); err == nil {
		t.Fatalf("expected error without a terminal")
	}
}

func TestEventKindString(t *testing.T) {
	if EventAccountsChanged.String() != "accountsChanged" || EventChainChanged.String() != "chainChanged" || EventDisconnect.String() != "disconnect" {
		t.Fatalf("event names changed")
	}
}
