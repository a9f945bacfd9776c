package feehub

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrZeroDenominator guards the percent scale.
	ErrZeroDenominator = errors.New("feehub: zero percent denominator")
	// ErrAmountOverflow means feeAmount*feePercent does not fit in a u64,
	// which the program's checked arithmetic rejects as well.
	ErrAmountOverflow = errors.New("feehub: fee share overflows u64")
)

// Disbursement is one wallet's share of a fee.
type Disbursement struct {
	Address solana.PublicKey `json:"address"`
	Amount  uint64           `json:"amount"`
}

// Split computes floor(feeAmount*percent/denominator) per wallet, preserving
// order. Any remainder left by percents that do not sum to denominator stays
// with the payer. A share whose product feeAmount*percent overflows u64 is
// refused with ErrAmountOverflow even when the quotient would fit, because the
// program's checked multiply aborts on it.
func Split(feeAmount uint64, wallets []FeeWallet, denominator uint64) ([]Disbursement, error) {
	if denominator == 0 {
		return nil, ErrZeroDenominator
	}
	out := make([]Disbursement, 0, len(wallets))
	for i, w := range wallets {
		hi, lo := bits.Mul64(feeAmount, w.FeePercent)
		if hi != 0 {
			return nil, fmt.Errorf("%w: wallet %d (%s)", ErrAmountOverflow, i, w.Address)
		}
		out = append(out, Disbursement{Address: w.Address, Amount: lo / denominator})
	}
	return out, nil
}

// Total sums a split.
func Total(ds []Disbursement) uint64 {
	var sum uint64
	for _, d := range ds {
		sum += d.Amount
	}
	return sum
}

// ResolveFeeWallets returns the wallets the program will pay for r.
func ResolveFeeWallets(r *ConfigRecord) []FeeWallet {
	if r.IsUsingGlobalFeeWallets {
		out := make([]FeeWallet, len(GlobalFeeWallets))
		copy(out, GlobalFeeWallets[:])
		return out
	}
	out := make([]FeeWallet, len(r.FeeWallets))
	copy(out, r.FeeWallets)
	return out
}

// SplitRecord splits r's fee across its resolved wallets.
func SplitRecord(r *ConfigRecord) ([]Disbursement, error) {
	return Split(r.FeeAmount, ResolveFeeWallets(r), PercentDenominator)
}
