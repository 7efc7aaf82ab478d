package model

import (
	"errors"
	"fmt"
)

var (
	ErrNoProvider          = errors.New("no wallet provider available")
	ErrUserRejected        = errors.New("user rejected the request")
	ErrNetworkMismatch     = errors.New("wallet network does not match the required chain")
	ErrBelowMinimum        = errors.New("amount below minimum investment")
	ErrInvalidReferrer     = errors.New("invalid referrer address")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrApprovalFailed      = errors.New("approval failed")
	ErrTransactionReverted = errors.New("transaction reverted")
	ErrSessionChanged      = errors.New("session changed during workflow")
	ErrNotConnected        = errors.New("wallet not connected")
	ErrBusy                = errors.New("another workflow is in progress")
)

// ReadError is a failed contract read during aggregation.
type ReadError struct {
	Call string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Call, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
