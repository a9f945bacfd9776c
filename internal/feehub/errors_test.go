package feehub

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

func TestLookupProgramError(t *testing.T) {
	e, ok := LookupProgramError(6002)
	if !ok || e.Name != "InvalidFeeWallet" || e.Msg != "Invalid Fee Wallet." {
		t.Fatalf("unexpected lookup %+v", e)
	}
	if _, ok := LookupProgramError(42); ok {
		t.Fatalf("expected unknown code to miss")
	}
}

func TestAsProgramErrorWrapped(t *testing.T) {
	err := fmt.Errorf("send: %w", ErrInvalidRemainingAccounts)
	pe, ok := AsProgramError(err)
	if !ok || pe.Code != 6003 {
		t.Fatalf("expected 6003, got %+v", pe)
	}
	if !errors.Is(err, ErrInvalidRemainingAccounts) {
		t.Fatalf("expected errors.Is to match")
	}
}

func TestAsProgramErrorFromRPC(t *testing.T) {
	var data interface{}
	raw := `{"err":{"InstructionError":[0,{"Custom":6000}]},"logs":["Program log: AnchorError"]}`
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	err := fmt.Errorf("send: %w", &jsonrpc.RPCError{Code: -32002, Message: "Transaction simulation failed", Data: data})
	pe, ok := AsProgramError(err)
	if !ok || pe != ErrInvalidAuthority {
		t.Fatalf("expected InvalidAuthority, got %+v", pe)
	}
}

func TestAsProgramErrorUnrelated(t *testing.T) {
	if _, ok := AsProgramError(errors.New("timeout")); ok {
		t.Fatalf("expected unrelated error to miss")
	}
	if _, ok := AsProgramError(nil); ok {
		t.Fatalf("expected nil to miss")
	}
}
