package feehub

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrTooManyFeeWallets means more than MaxFeeWallets destinations were supplied.
	ErrTooManyFeeWallets = errors.New("feehub: too many fee wallets")
	// ErrNameTooLong means the instruction label exceeds MaxFeeInstructionNameLen bytes.
	ErrNameTooLong = errors.New("feehub: fee instruction name too long")
	// ErrNameNotUTF8 means the instruction label is not valid UTF-8, which the
	// program's string decoding rejects.
	ErrNameNotUTF8 = errors.New("feehub: fee instruction name is not valid utf-8")
)

// ConfigParams are the caller-controlled fields of a create or update request.
type ConfigParams struct {
	TargetProgram           solana.PublicKey
	FeeInstructionIndex     uint64
	IsUsingGlobalFeeWallets bool
	FeeWallets              []FeeWallet
	FeeAmount               uint64
	FeeInstructionName      string
}

// Validate enforces the structural bounds of a config. Percent totals are not
// checked; the program accepts under- and over-allocation.
func Validate(p ConfigParams) error {
	if len(p.FeeWallets) > MaxFeeWallets {
		return fmt.Errorf("%w: %d > %d", ErrTooManyFeeWallets, len(p.FeeWallets), MaxFeeWallets)
	}
	if n := len(p.FeeInstructionName); n > MaxFeeInstructionNameLen {
		return fmt.Errorf("%w: %d bytes > %d", ErrNameTooLong, n, MaxFeeInstructionNameLen)
	}
	if !utf8.ValidString(p.FeeInstructionName) {
		return fmt.Errorf("%w: %q", ErrNameNotUTF8, p.FeeInstructionName)
	}
	return nil
}
