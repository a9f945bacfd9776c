package paper

import (
	"errors"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
)

// ErrInsufficientFunds mirrors the system program's transfer failure.
var ErrInsufficientFunds = errors.New("paper: insufficient lamports for transfer")

// balances tracks lamports per wallet. It is not safe for concurrent use;
// Ledger serializes access.
type balances map[solana.PublicKey]uint64

func (b balances) clone() balances {
	out := make(balances, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

func (b balances) transfer(from, to solana.PublicKey, lamports uint64) error {
	if lamports == 0 {
		return nil
	}
	if b[from] < lamports {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, b[from], lamports)
	}
	b[from] -= lamports
	b[to] += lamports
	return nil
}

// Fund credits lamports to a wallet, as an airdrop would.
func (l *Ledger) Fund(wallet solana.PublicKey, lamports uint64) {
	l.mu.Lock()
	l.balances[wallet] += lamports
	l.mu.Unlock()
}

// Balance returns a wallet's lamports.
func (l *Ledger) Balance(wallet solana.PublicKey) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[wallet]
}
