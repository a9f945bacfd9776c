// Package risk guards how much a single command may pay out.
package risk

import (
	"errors"
	"fmt"
)

// ErrFeeOverLimit is returned when a transfer would pay more than the cap.
var ErrFeeOverLimit = errors.New("risk: fee exceeds per-transfer limit")

// Limits caps lamports moved by one transfer_fees. Zero disables the cap.
type Limits struct {
	MaxFeePerTransfer uint64
}

// Allow reports whether amount fits under the cap.
func (l Limits) Allow(amount uint64) bool {
	return l.MaxFeePerTransfer == 0 || amount <= l.MaxFeePerTransfer
}

// Check is Allow with an error suitable for returning to the caller.
func (l Limits) Check(amount uint64) error {
	if l.Allow(amount) {
		return nil
	}
	return fmt.Errorf("%w: %d > %d", ErrFeeOverLimit, amount, l.MaxFeePerTransfer)
}
