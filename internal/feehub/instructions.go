package feehub

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ErrUnknownInstruction means a payload does not start with a known discriminator.
var ErrUnknownInstruction = errors.New("feehub: unknown instruction discriminator")

// Kind names a hub instruction.
type Kind string

const (
	KindCreateConfig Kind = "create_config"
	KindUpdateConfig Kind = "update_config"
	KindTransferFees Kind = "transfer_fees"
)

// Fixed account positions shared by all hub instructions.
const (
	AccountAuthority = iota
	AccountConfig
	AccountTargetProgram
	AccountSystemProgram
)

// TransferFeesFixedAccounts is the number of accounts before the payout wallets.
const TransferFeesFixedAccounts = 4

// Instruction is a ready-to-sign hub instruction. It satisfies solana.Instruction.
type Instruction struct {
	Kind         Kind
	Program      solana.PublicKey
	AccountMetas []*solana.AccountMeta
	Payload      []byte
}

var _ solana.Instruction = (*Instruction)(nil)

func (i *Instruction) ProgramID() solana.PublicKey { return i.Program }

func (i *Instruction) Accounts() []*solana.AccountMeta { return i.AccountMetas }

func (i *Instruction) Data() ([]byte, error) { return i.Payload, nil }

// ConfigArgs is the create/update argument struct. The program declares
// FeeWallets as a fixed array, so unused slots carry the system program with
// a zero percent.
type ConfigArgs struct {
	FeeInstructionIndex     uint64
	IsUsingGlobalFeeWallets bool
	FeeWallets              [MaxFeeWallets]FeeWallet
	FeeAmount               uint64
	FeeInstructionName      string
}

// TransferFeesArgs is the transfer_fees argument struct.
type TransferFeesArgs struct {
	FeeInstructionIndex uint64
}

// Builder assembles instructions for one deployment of the hub program.
type Builder struct {
	ProgramID solana.PublicKey
}

// NewBuilder targets the hub at programID.
func NewBuilder(programID solana.PublicKey) *Builder {
	return &Builder{ProgramID: programID}
}

// CreateConfig builds create_config after validating p.
func (b *Builder) CreateConfig(authority solana.PublicKey, p ConfigParams) (*Instruction, error) {
	return b.configInstruction(KindCreateConfig, authority, p)
}

// UpdateConfig builds update_config after validating p.
func (b *Builder) UpdateConfig(authority solana.PublicKey, p ConfigParams) (*Instruction, error) {
	return b.configInstruction(KindUpdateConfig, authority, p)
}

func (b *Builder) configInstruction(kind Kind, authority solana.PublicKey, p ConfigParams) (*Instruction, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	config, _, err := DeriveConfigAddress(b.ProgramID, p.TargetProgram, p.FeeInstructionIndex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}

	disc := CreateConfigDiscriminator
	accounts := []*solana.AccountMeta{
		solana.NewAccountMeta(authority, true, true),
		solana.NewAccountMeta(config, true, false),
		solana.NewAccountMeta(p.TargetProgram, false, false),
	}
	switch kind {
	case KindCreateConfig:
		accounts = append(accounts, solana.NewAccountMeta(SystemProgramID, false, false))
	case KindUpdateConfig:
		disc = UpdateConfigDiscriminator
	}

	payload, err := encodeConfigArgs(disc, newConfigArgs(p))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return &Instruction{Kind: kind, Program: b.ProgramID, AccountMetas: accounts, Payload: payload}, nil
}

// TransferFees builds transfer_fees. Each non-placeholder wallet becomes a
// writable remaining account, in list order; the program pairs them with its
// own split by position.
func (b *Builder) TransferFees(authority, target solana.PublicKey, index uint64, wallets []FeeWallet) (*Instruction, error) {
	config, _, err := DeriveConfigAddress(b.ProgramID, target, index)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KindTransferFees, err)
	}
	accounts := []*solana.AccountMeta{
		solana.NewAccountMeta(authority, true, true),
		solana.NewAccountMeta(config, false, false),
		solana.NewAccountMeta(target, false, false),
		solana.NewAccountMeta(SystemProgramID, false, false),
	}
	for _, w := range wallets {
		if w.IsPlaceholder() {
			continue
		}
		accounts = append(accounts, solana.NewAccountMeta(w.Address, true, false))
	}

	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteBytes(TransferFeesDiscriminator[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(index, binary.LittleEndian); err != nil {
		return nil, err
	}
	return &Instruction{Kind: KindTransferFees, Program: b.ProgramID, AccountMetas: accounts, Payload: buf.Bytes()}, nil
}

// TransferFeesForRecord builds transfer_fees for a fetched record, resolving
// global wallets the way the program does. The record is a snapshot; a
// concurrent update can make the request stale.
func (b *Builder) TransferFeesForRecord(authority solana.PublicKey, r *ConfigRecord) (*Instruction, error) {
	return b.TransferFees(authority, r.Program, uint64(r.FeeInstructionIndex), ResolveFeeWallets(r))
}

func newConfigArgs(p ConfigParams) ConfigArgs {
	args := ConfigArgs{
		FeeInstructionIndex:     p.FeeInstructionIndex,
		IsUsingGlobalFeeWallets: p.IsUsingGlobalFeeWallets,
		FeeAmount:               p.FeeAmount,
		FeeInstructionName:      p.FeeInstructionName,
	}
	for i := range args.FeeWallets {
		if i < len(p.FeeWallets) {
			args.FeeWallets[i] = p.FeeWallets[i]
			continue
		}
		args.FeeWallets[i] = FeeWallet{Address: SystemProgramID}
	}
	return args
}

func encodeConfigArgs(disc [8]byte, args ConfigArgs) ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteBytes(disc[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(args.FeeInstructionIndex, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteBool(args.IsUsingGlobalFeeWallets); err != nil {
		return nil, err
	}
	if err := writeFeeWallets(enc, args.FeeWallets[:]); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(args.FeeAmount, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := writeString(enc, args.FeeInstructionName); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodedInstruction is a parsed hub payload. Exactly one of Config or
// TransferFees is set.
type DecodedInstruction struct {
	Kind         Kind
	Config       *ConfigArgs
	TransferFees *TransferFeesArgs
}

// DecodeInstruction parses a hub instruction payload.
func DecodeInstruction(data []byte) (*DecodedInstruction, error) {
	d := &reader{dec: bin.NewBorshDecoder(data)}
	raw, err := d.bytes(8, "discriminator")
	if err != nil {
		return nil, err
	}
	var disc [8]byte
	copy(disc[:], raw)

	switch disc {
	case CreateConfigDiscriminator, UpdateConfigDiscriminator:
		kind := KindCreateConfig
		if disc == UpdateConfigDiscriminator {
			kind = KindUpdateConfig
		}
		args, err := decodeConfigArgs(d)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return &DecodedInstruction{Kind: kind, Config: args}, nil
	case TransferFeesDiscriminator:
		index, err := d.u64("fee_instruction_index")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KindTransferFees, err)
		}
		return &DecodedInstruction{Kind: KindTransferFees, TransferFees: &TransferFeesArgs{FeeInstructionIndex: index}}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownInstruction, disc)
}

func decodeConfigArgs(d *reader) (*ConfigArgs, error) {
	var (
		args ConfigArgs
		err  error
	)
	if args.FeeInstructionIndex, err = d.u64("fee_instruction_index"); err != nil {
		return nil, err
	}
	if args.IsUsingGlobalFeeWallets, err = d.boolean("is_using_global_fee_wallets"); err != nil {
		return nil, err
	}
	for i := range args.FeeWallets {
		if args.FeeWallets[i], err = d.feeWallet(); err != nil {
			return nil, err
		}
	}
	if args.FeeAmount, err = d.u64("fee_amount"); err != nil {
		return nil, err
	}
	if args.FeeInstructionName, err = d.str("fee_instruction_name"); err != nil {
		return nil, err
	}
	return &args, nil
}
