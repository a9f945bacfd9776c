package feehub

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// ProgramError is an error code returned by the hub program itself.
type ProgramError struct {
	Code uint32
	Name string
	Msg  string
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("program error %d %s: %s", e.Code, e.Name, e.Msg)
}

// Is matches on code so wrapped copies compare equal to the package vars.
func (e *ProgramError) Is(target error) bool {
	t, ok := target.(*ProgramError)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidAuthority         = &ProgramError{Code: 6000, Name: "InvalidAuthority", Msg: "Invalid Authority."}
	ErrInvalidInstruction       = &ProgramError{Code: 6001, Name: "InvalidInstruction", Msg: "Invalid Instruction."}
	ErrInvalidFeeWallet         = &ProgramError{Code: 6002, Name: "InvalidFeeWallet", Msg: "Invalid Fee Wallet."}
	ErrInvalidRemainingAccounts = &ProgramError{Code: 6003, Name: "InvalidRemainingAccounts", Msg: "Invalid Remaining Accounts."}
)

var programErrors = map[uint32]*ProgramError{
	ErrInvalidAuthority.Code:         ErrInvalidAuthority,
	ErrInvalidInstruction.Code:       ErrInvalidInstruction,
	ErrInvalidFeeWallet.Code:         ErrInvalidFeeWallet,
	ErrInvalidRemainingAccounts.Code: ErrInvalidRemainingAccounts,
}

// LookupProgramError returns the hub error for code, if it is one.
func LookupProgramError(code uint32) (*ProgramError, bool) {
	e, ok := programErrors[code]
	return e, ok
}

// AsProgramError extracts a hub error from err. It understands errors that
// already wrap a *ProgramError and JSON-RPC errors whose data carries an
// InstructionError {"Custom": code}.
func AsProgramError(err error) (*ProgramError, bool) {
	if err == nil {
		return nil, false
	}
	var pe *ProgramError
	if errors.As(err, &pe) {
		return pe, true
	}
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return nil, false
	}
	code, ok := findCustomCode(rpcErr.Data)
	if !ok {
		return nil, false
	}
	return LookupProgramError(code)
}

// CustomCodeFromTxError finds the custom program code in a transaction error
// value such as SimulateTransactionResult.Err.
func CustomCodeFromTxError(v interface{}) (uint32, bool) {
	return findCustomCode(v)
}

func findCustomCode(v interface{}) (uint32, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		if c, ok := t["Custom"]; ok {
			return parseCode(c)
		}
		for _, inner := range t {
			if code, ok := findCustomCode(inner); ok {
				return code, true
			}
		}
	case []interface{}:
		for _, inner := range t {
			if code, ok := findCustomCode(inner); ok {
				return code, true
			}
		}
	}
	return 0, false
}

func parseCode(v interface{}) (uint32, bool) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		s = fmt.Sprint(t)
	}
	code, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(code), true
}
