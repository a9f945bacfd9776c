package feehub

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var (
	// ErrDiscriminatorMismatch means the buffer is not a config record.
	ErrDiscriminatorMismatch = errors.New("feehub: discriminator mismatch")
	// ErrTruncatedInput means the buffer ended before the current field.
	ErrTruncatedInput = errors.New("feehub: truncated input")
	// ErrInvalidBool means a bool byte was neither 0 nor 1.
	ErrInvalidBool = errors.New("feehub: invalid bool encoding")
)

const (
	publicKeySize = 32
	feeWalletSize = publicKeySize + 8
	reservedSize  = 16
)

// MaxConfigRecordSize is the encoded size of a record at full capacity.
const MaxConfigRecordSize = 8 + 1 + publicKeySize + 1 + 1 + 8 +
	4 + MaxFeeWallets*feeWalletSize +
	4 + MaxFeeInstructionNameLen +
	8 + 2*reservedSize

// FeeWallet is one payout destination. FeePercent is scaled by PercentDenominator.
type FeeWallet struct {
	Address    solana.PublicKey `json:"address"`
	FeePercent uint64           `json:"feePercent"`
}

// ConfigRecord mirrors the program's Config account.
//
// FeeInstructionIndex is a u8 on chain even though requests and address seeds
// carry the index as a u64. A decoded record always has a non-nil FeeWallets,
// empty when the vec is.
type ConfigRecord struct {
	Bump                    uint8                 `json:"bump"`
	Program                 solana.PublicKey      `json:"program"`
	FeeInstructionIndex     uint8                 `json:"feeInstructionIndex"`
	IsUsingGlobalFeeWallets bool                  `json:"isUsingGlobalFeeWallets"`
	FeeAmount               uint64                `json:"feeAmount"`
	FeeWallets              []FeeWallet           `json:"feeWallets"`
	FeeInstructionName      string                `json:"feeInstructionName"`
	CreatedAt               uint64                `json:"createdAt"`
	Reserved                [2][reservedSize]byte `json:"-"`
}

// PayoutWallets returns the wallets that own a payout slot, in order.
func (r *ConfigRecord) PayoutWallets() []FeeWallet {
	out := make([]FeeWallet, 0, len(r.FeeWallets))
	for _, w := range r.FeeWallets {
		if !w.IsPlaceholder() {
			out = append(out, w)
		}
	}
	return out
}

// Matches reports whether applying p through update would leave r unchanged.
func (r *ConfigRecord) Matches(p ConfigParams) bool {
	if r.IsUsingGlobalFeeWallets != p.IsUsingGlobalFeeWallets ||
		r.FeeAmount != p.FeeAmount ||
		r.FeeInstructionName != p.FeeInstructionName {
		return false
	}
	want := newConfigArgs(p).FeeWallets
	if len(r.FeeWallets) != len(want) {
		return false
	}
	for i := range want {
		if r.FeeWallets[i] != want[i] {
			return false
		}
	}
	return true
}

// EncodeConfigRecord serializes r in account layout, discriminator first.
func EncodeConfigRecord(r *ConfigRecord) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("encode config: nil record")
	}
	if len(r.FeeWallets) > MaxFeeWallets {
		return nil, fmt.Errorf("encode config: %w", ErrTooManyFeeWallets)
	}
	if len(r.FeeInstructionName) > MaxFeeInstructionNameLen {
		return nil, fmt.Errorf("encode config: %w", ErrNameTooLong)
	}

	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	steps := []func() error{
		func() error { return enc.WriteBytes(ConfigDiscriminator[:], false) },
		func() error { return enc.WriteUint8(r.Bump) },
		func() error { return enc.WriteBytes(r.Program[:], false) },
		func() error { return enc.WriteUint8(r.FeeInstructionIndex) },
		func() error { return enc.WriteBool(r.IsUsingGlobalFeeWallets) },
		func() error { return enc.WriteUint64(r.FeeAmount, binary.LittleEndian) },
		func() error { return enc.WriteUint32(uint32(len(r.FeeWallets)), binary.LittleEndian) },
		func() error { return writeFeeWallets(enc, r.FeeWallets) },
		func() error { return writeString(enc, r.FeeInstructionName) },
		func() error { return enc.WriteUint64(r.CreatedAt, binary.LittleEndian) },
		func() error { return enc.WriteBytes(r.Reserved[0][:], false) },
		func() error { return enc.WriteBytes(r.Reserved[1][:], false) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func writeFeeWallets(enc *bin.Encoder, wallets []FeeWallet) error {
	for _, w := range wallets {
		if err := enc.WriteBytes(w.Address[:], false); err != nil {
			return err
		}
		if err := enc.WriteUint64(w.FeePercent, binary.LittleEndian); err != nil {
			return err
		}
	}
	return nil
}

func writeString(enc *bin.Encoder, s string) error {
	if err := enc.WriteUint32(uint32(len(s)), binary.LittleEndian); err != nil {
		return err
	}
	return enc.WriteBytes([]byte(s), false)
}

// DecodeConfigRecord parses raw account data. Trailing bytes are ignored since
// accounts are allocated with room to spare.
func DecodeConfigRecord(data []byte) (*ConfigRecord, error) {
	d := &reader{dec: bin.NewBorshDecoder(data)}

	disc, err := d.bytes(len(ConfigDiscriminator), "discriminator")
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(disc, ConfigDiscriminator[:]) {
		return nil, fmt.Errorf("%w: got %v", ErrDiscriminatorMismatch, disc)
	}

	var r ConfigRecord
	if r.Bump, err = d.u8("bump"); err != nil {
		return nil, err
	}
	if r.Program, err = d.publicKey("program"); err != nil {
		return nil, err
	}
	if r.FeeInstructionIndex, err = d.u8("fee_instruction_index"); err != nil {
		return nil, err
	}
	if r.IsUsingGlobalFeeWallets, err = d.boolean("is_using_global_fee_wallets"); err != nil {
		return nil, err
	}
	if r.FeeAmount, err = d.u64("fee_amount"); err != nil {
		return nil, err
	}
	n, err := d.u32("fee_wallets length")
	if err != nil {
		return nil, err
	}
	if uint64(n)*feeWalletSize > uint64(d.dec.Remaining()) {
		return nil, fmt.Errorf("%w: fee_wallets declares %d entries", ErrTruncatedInput, n)
	}
	r.FeeWallets = make([]FeeWallet, n)
	for i := range r.FeeWallets {
		if r.FeeWallets[i], err = d.feeWallet(); err != nil {
			return nil, err
		}
	}
	if r.FeeInstructionName, err = d.str("fee_instruction_name"); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = d.u64("created_at"); err != nil {
		return nil, err
	}
	for i := range r.Reserved {
		raw, err := d.bytes(reservedSize, "reserved")
		if err != nil {
			return nil, err
		}
		copy(r.Reserved[i][:], raw)
	}
	return &r, nil
}

// reader checks remaining length before every read so short buffers map to
// ErrTruncatedInput instead of a decoder-specific error.
type reader struct {
	dec *bin.Decoder
}

func (r *reader) need(n int, field string) error {
	if r.dec.Remaining() < n {
		return fmt.Errorf("%w: %s needs %d bytes, %d remaining", ErrTruncatedInput, field, n, r.dec.Remaining())
	}
	return nil
}

func (r *reader) bytes(n int, field string) ([]byte, error) {
	if err := r.need(n, field); err != nil {
		return nil, err
	}
	out, err := r.dec.ReadNBytes(n)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return out, nil
}

func (r *reader) u8(field string) (uint8, error) {
	if err := r.need(1, field); err != nil {
		return 0, err
	}
	return r.dec.ReadUint8()
}

func (r *reader) boolean(field string) (bool, error) {
	v, err := r.u8(field)
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: %s = %d", ErrInvalidBool, field, v)
}

func (r *reader) u32(field string) (uint32, error) {
	if err := r.need(4, field); err != nil {
		return 0, err
	}
	return r.dec.ReadUint32(binary.LittleEndian)
}

func (r *reader) u64(field string) (uint64, error) {
	if err := r.need(8, field); err != nil {
		return 0, err
	}
	return r.dec.ReadUint64(binary.LittleEndian)
}

func (r *reader) publicKey(field string) (solana.PublicKey, error) {
	raw, err := r.bytes(publicKeySize, field)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(raw), nil
}

func (r *reader) feeWallet() (FeeWallet, error) {
	addr, err := r.publicKey("fee_wallet.address")
	if err != nil {
		return FeeWallet{}, err
	}
	pct, err := r.u64("fee_wallet.fee_percent")
	if err != nil {
		return FeeWallet{}, err
	}
	return FeeWallet{Address: addr, FeePercent: pct}, nil
}

func (r *reader) str(field string) (string, error) {
	n, err := r.u32(field + " length")
	if err != nil {
		return "", err
	}
	raw, err := r.bytes(int(n), field)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: %s", ErrNameNotUTF8, field)
	}
	return string(raw), nil
}
