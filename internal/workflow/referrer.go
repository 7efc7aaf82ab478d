package workflow

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"vaultScope/internal/model"
)

// PlaceholderReferrer is shown when no referrer was detected; it means "no referrer".
const PlaceholderReferrer = "Not detected"

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsAddress reports whether s is 0x followed by exactly 40 hex digits.
func IsAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// ParseReferrer resolves the referrer input. Empty, placeholder and zero-address inputs map to the
// zero address.
func ParseReferrer(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if input == "" || input == PlaceholderReferrer {
		return common.Address{}, nil
	}
	if !IsAddress(input) {
		return common.Address{}, fmt.Errorf("%w: %q", model.ErrInvalidReferrer, input)
	}
	return common.HexToAddress(input), nil
}

// ReferrerFromLink extracts a valid ?ref= address from a referral link.
func ReferrerFromLink(link string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", false
	}
	ref := u.Query().Get("ref")
	if !IsAddress(ref) {
		return "", false
	}
	return ref, true
}
