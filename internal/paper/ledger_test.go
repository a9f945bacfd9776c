package paper

import (
	"context"
	"errors"
	"testing"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"github.com/hey-its-slowly/fee-governance-hub/internal/execution"
	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
)

type harness struct {
	ledger  *Ledger
	admin   solana.PrivateKey
	builder *feehub.Builder
	submit  *execution.Submitter
	target  solana.PublicKey
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	programID := solana.MustPublicKeyFromBase58(feehub.DefaultProgramID)
	admin := solana.NewWallet().PrivateKey
	clock := func() time.Time { return time.Unix(1_700_000_000, 0) }
	l := NewLedger(programID, []solana.PublicKey{admin.PublicKey()}, WithClock(clock))
	l.Fund(admin.PublicKey(), 1_000_000_000)
	return &harness{
		ledger:  l,
		admin:   admin,
		builder: feehub.NewBuilder(programID),
		submit:  execution.NewSubmitter(l, "confirmed", zerolog.Nop()),
		target:  solana.NewWallet().PublicKey(),
	}
}

func (h *harness) send(t *testing.T, signer solana.PrivateKey, ixs ...*feehub.Instruction) error {
	t.Helper()
	_, err := h.submit.Submit(context.Background(), signer, ixs...)
	return err
}

func (h *harness) create(t *testing.T, p feehub.ConfigParams) {
	t.Helper()
	ix, err := h.builder.CreateConfig(h.admin.PublicKey(), p)
	if err != nil {
		t.Fatalf("CreateConfig build error: %v", err)
	}
	if err := h.send(t, h.admin, ix); err != nil {
		t.Fatalf("create_config rejected: %v", err)
	}
}

func (h *harness) record(t *testing.T, index uint64) *feehub.ConfigRecord {
	t.Helper()
	key, _, err := feehub.DeriveConfigAddress(h.ledger.programID, h.target, index)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	res, err := h.ledger.GetAccountInfoWithOpts(context.Background(), key, nil)
	if err != nil {
		t.Fatalf("GetAccountInfo error: %v", err)
	}
	if got := len(res.Value.Data.GetBinary()); got != feehub.MaxConfigRecordSize {
		t.Fatalf("expected account sized %d, got %d", feehub.MaxConfigRecordSize, got)
	}
	r, err := feehub.DecodeConfigRecord(res.Value.Data.GetBinary())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return r
}

func splitParams(target, a, b solana.PublicKey) feehub.ConfigParams {
	return feehub.ConfigParams{
		TargetProgram:       target,
		FeeInstructionIndex: 0,
		FeeWallets:          []feehub.FeeWallet{{Address: a, FeePercent: 800}, {Address: b, FeePercent: 200}},
		FeeAmount:           10_000_000,
		FeeInstructionName:  "mint",
	}
}

func TestCreateConfigStoresRecord(t *testing.T) {
	h := newHarness(t)
	a, b := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	h.create(t, splitParams(h.target, a, b))

	r := h.record(t, 0)
	if !r.Program.Equals(h.target) || r.FeeAmount != 10_000_000 || r.FeeInstructionName != "mint" {
		t.Fatalf("unexpected record %+v", r)
	}
	if r.CreatedAt != 1_700_000_000 {
		t.Fatalf("expected created_at from clock, got %d", r.CreatedAt)
	}
	if len(r.FeeWallets) != feehub.MaxFeeWallets || !r.FeeWallets[2].IsPlaceholder() {
		t.Fatalf("expected padded wallet slots, got %+v", r.FeeWallets)
	}
	if payout := r.PayoutWallets(); len(payout) != 2 || payout[0].Address != a {
		t.Fatalf("unexpected payout wallets %+v", payout)
	}
}

func TestCreateConfigRejectsDuplicateAndNonAdmin(t *testing.T) {
	h := newHarness(t)
	p := splitParams(h.target, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	h.create(t, p)

	ix, _ := h.builder.CreateConfig(h.admin.PublicKey(), p)
	if err := h.send(t, h.admin, ix); !errors.Is(err, ErrAccountInUse) {
		t.Fatalf("expected ErrAccountInUse, got %v", err)
	}

	stranger := solana.NewWallet().PrivateKey
	p.FeeInstructionIndex = 1
	ix, _ = h.builder.CreateConfig(stranger.PublicKey(), p)
	err := h.send(t, stranger, ix)
	if !errors.Is(err, feehub.ErrInvalidAuthority) {
		t.Fatalf("expected InvalidAuthority, got %v", err)
	}
	if pe, ok := feehub.AsProgramError(err); !ok || pe.Code != 6000 {
		t.Fatalf("expected code 6000, got %+v", pe)
	}
}

func TestUpdateConfigKeepsIdentity(t *testing.T) {
	h := newHarness(t)
	p := splitParams(h.target, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())

	ix, _ := h.builder.UpdateConfig(h.admin.PublicKey(), p)
	if err := h.send(t, h.admin, ix); !errors.Is(err, ErrAccountNotInitialized) {
		t.Fatalf("expected ErrAccountNotInitialized, got %v", err)
	}

	h.create(t, p)
	before := h.record(t, 0)
	p.IsUsingGlobalFeeWallets = true
	p.FeeAmount = 5
	p.FeeInstructionName = "burn"
	ix, _ = h.builder.UpdateConfig(h.admin.PublicKey(), p)
	if err := h.send(t, h.admin, ix); err != nil {
		t.Fatalf("update_config rejected: %v", err)
	}
	after := h.record(t, 0)
	if !after.IsUsingGlobalFeeWallets || after.FeeAmount != 5 || after.FeeInstructionName != "burn" {
		t.Fatalf("update not applied: %+v", after)
	}
	if after.CreatedAt != before.CreatedAt || after.Bump != before.Bump || !after.Program.Equals(before.Program) {
		t.Fatalf("update changed identity fields: %+v vs %+v", after, before)
	}
}

func TestTransferFeesPaysEachWallet(t *testing.T) {
	h := newHarness(t)
	a, b := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	h.create(t, splitParams(h.target, a, b))

	ix, err := h.builder.TransferFeesForRecord(h.admin.PublicKey(), h.record(t, 0))
	if err != nil {
		t.Fatalf("TransferFeesForRecord error: %v", err)
	}
	start := h.ledger.Balance(h.admin.PublicKey())
	if err := h.send(t, h.admin, ix); err != nil {
		t.Fatalf("transfer_fees rejected: %v", err)
	}
	if got := h.ledger.Balance(a); got != 8_000_000 {
		t.Fatalf("wallet a got %d", got)
	}
	if got := h.ledger.Balance(b); got != 2_000_000 {
		t.Fatalf("wallet b got %d", got)
	}
	if got := h.ledger.Balance(h.admin.PublicKey()); got != start-10_000_000 {
		t.Fatalf("payer balance %d, want %d", got, start-10_000_000)
	}
}

func TestTransferFeesUsesGlobalWallets(t *testing.T) {
	h := newHarness(t)
	p := splitParams(h.target, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	p.IsUsingGlobalFeeWallets = true
	h.create(t, p)

	ix, _ := h.builder.TransferFeesForRecord(h.admin.PublicKey(), h.record(t, 0))
	if err := h.send(t, h.admin, ix); err != nil {
		t.Fatalf("transfer_fees rejected: %v", err)
	}
	if got := h.ledger.Balance(feehub.GlobalFeeWallets[0].Address); got != 10_000_000 {
		t.Fatalf("global wallet got %d", got)
	}
}

func TestTransferFeesRejectionsLeaveBalances(t *testing.T) {
	h := newHarness(t)
	a, b := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	h.create(t, splitParams(h.target, a, b))
	start := h.ledger.Balance(h.admin.PublicKey())

	cases := []struct {
		name    string
		wallets []feehub.FeeWallet
		want    error
	}{
		{"swapped", []feehub.FeeWallet{{Address: b}, {Address: a}}, feehub.ErrInvalidFeeWallet},
		{"partial", []feehub.FeeWallet{{Address: a}}, feehub.ErrInvalidRemainingAccounts},
		{"extra", []feehub.FeeWallet{{Address: a}, {Address: b}, {Address: a}}, feehub.ErrInvalidFeeWallet},
	}
	for _, tc := range cases {
		ix, _ := h.builder.TransferFees(h.admin.PublicKey(), h.target, 0, tc.wallets)
		if err := h.send(t, h.admin, ix); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if h.ledger.Balance(h.admin.PublicKey()) != start || h.ledger.Balance(a) != 0 {
			t.Fatalf("%s: balances moved on rejected transaction", tc.name)
		}
	}

	ix, _ := h.builder.TransferFees(h.admin.PublicKey(), h.target, 0, []feehub.FeeWallet{{Address: a}, {Address: b}})
	ix.AccountMetas = append(ix.AccountMetas,
		solana.NewAccountMeta(feehub.SystemProgramID, false, false),
		solana.NewAccountMeta(a, true, false),
	)
	if err := h.send(t, h.admin, ix); !errors.Is(err, feehub.ErrInvalidRemainingAccounts) {
		t.Fatalf("beyond slots: expected InvalidRemainingAccounts, got %v", err)
	}
}

func TestTransferFeesInsufficientFunds(t *testing.T) {
	h := newHarness(t)
	p := splitParams(h.target, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	p.FeeAmount = 2_000_000_000
	h.create(t, p)

	ix, _ := h.builder.TransferFeesForRecord(h.admin.PublicKey(), h.record(t, 0))
	if err := h.send(t, h.admin, ix); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestSeedsMismatch(t *testing.T) {
	h := newHarness(t)
	ix, _ := h.builder.CreateConfig(h.admin.PublicKey(), splitParams(h.target, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()))
	ix.AccountMetas[feehub.AccountConfig] = solana.NewAccountMeta(solana.NewWallet().PublicKey(), true, false)
	if err := h.send(t, h.admin, ix); !errors.Is(err, ErrSeedsMismatch) {
		t.Fatalf("expected ErrSeedsMismatch, got %v", err)
	}
}

func TestTransactionIsAtomic(t *testing.T) {
	h := newHarness(t)
	p := splitParams(h.target, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	create, _ := h.builder.CreateConfig(h.admin.PublicKey(), p)
	bad := &feehub.Instruction{Kind: feehub.KindUpdateConfig, Program: create.Program, AccountMetas: create.AccountMetas, Payload: []byte{1, 2, 3}}

	err := h.send(t, h.admin, create, bad)
	if !errors.Is(err, feehub.ErrInvalidInstruction) {
		t.Fatalf("expected InvalidInstruction, got %v", err)
	}
	key, _, _ := feehub.DeriveConfigAddress(h.ledger.programID, h.target, 0)
	if _, err := h.ledger.GetAccountInfoWithOpts(context.Background(), key, nil); !errors.Is(err, rpc.ErrNotFound) {
		t.Fatalf("expected create to be rolled back, got %v", err)
	}
}

func TestGetProgramAccountsAppliesFilters(t *testing.T) {
	h := newHarness(t)
	p := splitParams(h.target, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	h.create(t, p)
	p.FeeInstructionIndex = 3
	h.create(t, p)
	p.TargetProgram = solana.NewWallet().PublicKey()
	h.create(t, p)

	got, err := h.ledger.GetProgramAccountsWithOpts(context.Background(), h.ledger.programID, &rpc.GetProgramAccountsOpts{
		Filters: feehub.ConfigFilters(h.target),
	})
	if err != nil {
		t.Fatalf("GetProgramAccounts error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 configs for target, got %d", len(got))
	}
	other, _ := h.ledger.GetProgramAccountsWithOpts(context.Background(), solana.SystemProgramID, nil)
	if len(other) != 0 {
		t.Fatalf("expected no accounts for foreign program")
	}
}

func TestBlockhashAdvances(t *testing.T) {
	h := newHarness(t)
	first, _ := h.ledger.GetLatestBlockhash(context.Background(), rpc.CommitmentConfirmed)
	h.create(t, splitParams(h.target, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()))
	second, _ := h.ledger.GetLatestBlockhash(context.Background(), rpc.CommitmentConfirmed)
	if first.Value.Blockhash == second.Value.Blockhash {
		t.Fatalf("expected blockhash to change after a transaction")
	}
}
