package paper

import (
	"errors"
	"fmt"

	solana "github.com/gagliardetto/solana-go"

	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
)

var (
	// ErrSeedsMismatch means the config account is not the address derived
	// from the instruction's target and index.
	ErrSeedsMismatch = errors.New("paper: config address does not match seeds")
	// ErrAccountInUse is returned when create targets an existing config.
	ErrAccountInUse = errors.New("paper: config account already in use")
	// ErrAccountNotInitialized is returned when update or transfer_fees
	// targets a config that does not exist.
	ErrAccountNotInitialized = errors.New("paper: config account not initialized")
	// ErrMissingAccounts means an instruction carried fewer accounts than it needs.
	ErrMissingAccounts = errors.New("paper: not enough account keys")
)

type accountRef struct {
	key    solana.PublicKey
	signer bool
}

// state is the working copy a transaction mutates before commit.
type state struct {
	configs  map[solana.PublicKey][]byte
	balances balances
}

func (l *Ledger) apply(st *state, accounts []accountRef, data []byte) error {
	ix, err := feehub.DecodeInstruction(data)
	if err != nil {
		return fmt.Errorf("%w: %v", feehub.ErrInvalidInstruction, err)
	}
	need := feehub.AccountTargetProgram + 1
	if ix.Kind != feehub.KindUpdateConfig {
		need = feehub.TransferFeesFixedAccounts
	}
	if len(accounts) < need {
		return fmt.Errorf("%w: %s wants %d, got %d", ErrMissingAccounts, ix.Kind, need, len(accounts))
	}
	authority := accounts[feehub.AccountAuthority]
	if !authority.signer {
		return fmt.Errorf("%w: authority %s did not sign", feehub.ErrInvalidAuthority, authority.key)
	}
	if !l.isAdmin(authority.key) {
		return fmt.Errorf("%w: %s is not an admin", feehub.ErrInvalidAuthority, authority.key)
	}

	switch ix.Kind {
	case feehub.KindCreateConfig:
		return l.createConfig(st, accounts, ix.Config)
	case feehub.KindUpdateConfig:
		return l.updateConfig(st, accounts, ix.Config)
	default:
		return l.transferFees(st, accounts, ix.TransferFees)
	}
}

func (l *Ledger) isAdmin(key solana.PublicKey) bool {
	_, ok := l.admins[key]
	return ok
}

// configFor checks that the config account matches the PDA for (target, index).
func (l *Ledger) configFor(accounts []accountRef, index uint64) (solana.PublicKey, uint8, error) {
	target := accounts[feehub.AccountTargetProgram].key
	want, bump, err := feehub.DeriveConfigAddress(l.programID, target, index)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	if got := accounts[feehub.AccountConfig].key; !got.Equals(want) {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: got %s, want %s", ErrSeedsMismatch, got, want)
	}
	return want, bump, nil
}

func (l *Ledger) createConfig(st *state, accounts []accountRef, args *feehub.ConfigArgs) error {
	key, bump, err := l.configFor(accounts, args.FeeInstructionIndex)
	if err != nil {
		return err
	}
	if _, ok := st.configs[key]; ok {
		return fmt.Errorf("%w: %s", ErrAccountInUse, key)
	}
	record := &feehub.ConfigRecord{
		Bump:                    bump,
		Program:                 accounts[feehub.AccountTargetProgram].key,
		FeeInstructionIndex:     uint8(args.FeeInstructionIndex),
		IsUsingGlobalFeeWallets: args.IsUsingGlobalFeeWallets,
		FeeAmount:               args.FeeAmount,
		FeeWallets:              append([]feehub.FeeWallet(nil), args.FeeWallets[:]...),
		FeeInstructionName:      args.FeeInstructionName,
		CreatedAt:               uint64(l.now().Unix()),
	}
	return l.store(st, key, record)
}

func (l *Ledger) updateConfig(st *state, accounts []accountRef, args *feehub.ConfigArgs) error {
	key, _, err := l.configFor(accounts, args.FeeInstructionIndex)
	if err != nil {
		return err
	}
	record, err := loadRecord(st, key)
	if err != nil {
		return err
	}
	record.IsUsingGlobalFeeWallets = args.IsUsingGlobalFeeWallets
	record.FeeWallets = append([]feehub.FeeWallet(nil), args.FeeWallets[:]...)
	record.FeeAmount = args.FeeAmount
	record.FeeInstructionName = args.FeeInstructionName
	return l.store(st, key, record)
}

// transferFees pays each remaining account its share, pairing accounts and
// wallets by position. The shares paid must add up to the whole fee.
func (l *Ledger) transferFees(st *state, accounts []accountRef, args *feehub.TransferFeesArgs) error {
	key, _, err := l.configFor(accounts, args.FeeInstructionIndex)
	if err != nil {
		return err
	}
	record, err := loadRecord(st, key)
	if err != nil {
		return err
	}
	wallets := feehub.ResolveFeeWallets(record)
	payer := accounts[feehub.AccountAuthority].key

	var accumulated uint64
	for i, acct := range accounts[feehub.TransferFeesFixedAccounts:] {
		if i >= len(wallets) {
			return fmt.Errorf("%w: remaining account %d has no fee wallet", feehub.ErrInvalidRemainingAccounts, i)
		}
		w := wallets[i]
		if !w.Address.Equals(acct.key) {
			return fmt.Errorf("%w: account %d is %s, want %s", feehub.ErrInvalidFeeWallet, i, acct.key, w.Address)
		}
		shares, err := feehub.Split(record.FeeAmount, []feehub.FeeWallet{w}, feehub.PercentDenominator)
		if err != nil {
			return err
		}
		if err := st.balances.transfer(payer, acct.key, shares[0].Amount); err != nil {
			return err
		}
		if accumulated+w.FeePercent < accumulated {
			return fmt.Errorf("%w: percent total overflows", feehub.ErrInvalidRemainingAccounts)
		}
		accumulated += w.FeePercent
	}
	if accumulated != feehub.PercentDenominator {
		return fmt.Errorf("%w: paid %d of %d", feehub.ErrInvalidRemainingAccounts, accumulated, feehub.PercentDenominator)
	}
	return nil
}

func loadRecord(st *state, key solana.PublicKey) (*feehub.ConfigRecord, error) {
	data, ok := st.configs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotInitialized, key)
	}
	return feehub.DecodeConfigRecord(data)
}

// store encodes record into an account sized for a full record, as the
// program allocates it.
func (l *Ledger) store(st *state, key solana.PublicKey, record *feehub.ConfigRecord) error {
	raw, err := feehub.EncodeConfigRecord(record)
	if err != nil {
		return fmt.Errorf("%w: %v", feehub.ErrInvalidInstruction, err)
	}
	data := make([]byte, feehub.MaxConfigRecordSize)
	copy(data, raw)
	st.configs[key] = data
	return nil
}
