package workflow

import (
	"errors"
	"strings"

	"vaultScope/internal/model"
)

// Normalize maps a workflow failure to the message shown to the user.
func Normalize(kind Kind, err error) string {
	if err == nil {
		return ""
	}
	return "Failed: " + friendly(kind, err)
}

func friendly(kind Kind, err error) string {
	msg := err.Error()
	rejected := errors.Is(err, model.ErrUserRejected) || strings.Contains(msg, "user rejected")

	if errors.Is(err, model.ErrSessionChanged) {
		return "Account changed during the transaction, please retry"
	}

	switch kind {
	case KindInvest:
		switch {
		case rejected:
			return "Transaction cancelled by user"
		case strings.Contains(msg, "insufficient funds"):
			return "Insufficient BNB for gas"
		case errors.Is(err, model.ErrInsufficientBalance), strings.Contains(msg, "Insufficient USDT"):
			return "Insufficient USDT balance"
		case strings.Contains(msg, "Amount below minimum"):
			return "Amount below minimum investment (10 USDT)"
		}
	case KindClaimROI:
		switch {
		case rejected:
			return "Transaction cancelled"
		case strings.Contains(msg, "ROI below minimum withdraw"):
			return "ROI below minimum withdraw (1 USDT)"
		}
	case KindClaimReferral:
		switch {
		case rejected:
			return "Transaction cancelled"
		case strings.Contains(msg, "Bonus below minimum withdraw"):
			return "Bonus below minimum withdraw (1 USDT)"
		}
	case KindWithdraw:
		switch {
		case rejected:
			return "Transaction cancelled"
		case strings.Contains(msg, "Insufficient balance"):
			return "Insufficient balance to withdraw"
		}
	}
	return msg
}
