// Package feehub implements the client side of the fee governance hub protocol:
// config addressing, the on-chain record layout, request encoding and fee splits.
package feehub

import "github.com/gagliardetto/solana-go"

// DefaultProgramID is the deployed fee governance hub program.
const DefaultProgramID = "B2MAnZ2rRrespfWjFbq6jxp6BFDZ35wPQtMHY4zd3iFD"

const (
	// MaxFeeWallets bounds the number of payout destinations per config.
	MaxFeeWallets = 3
	// MaxFeeInstructionNameLen bounds the descriptive label, in bytes.
	MaxFeeInstructionNameLen = 30
	// PercentDenominator scales FeePercent: 1000 == 100%.
	PercentDenominator uint64 = 1000
)

// ConfigTag is the constant seed prefix for config addresses.
var ConfigTag = []byte("CONFIG_TAG")

// Discriminators are the first 8 bytes of sha256("account:<Name>") or
// sha256("global:<ix_name>").
var (
	ConfigDiscriminator       = [8]byte{155, 12, 170, 224, 30, 250, 204, 130}
	CreateConfigDiscriminator = [8]byte{201, 207, 243, 114, 75, 111, 47, 189}
	UpdateConfigDiscriminator = [8]byte{29, 158, 252, 191, 10, 83, 219, 99}
	TransferFeesDiscriminator = [8]byte{103, 60, 61, 79, 56, 61, 76, 49}
)

// SystemProgramID doubles as the "no payout slot" placeholder in wallet lists.
var SystemProgramID = solana.SystemProgramID

// GlobalFeeWallets is the protocol-wide table used when a config sets
// IsUsingGlobalFeeWallets.
var GlobalFeeWallets = [MaxFeeWallets]FeeWallet{
	{Address: solana.MustPublicKeyFromBase58("ArpaDqpkJpKfxLP7WoFvYMbkj33C1PAHcy8tyrxFpgrc"), FeePercent: 1000},
	{Address: solana.SystemProgramID, FeePercent: 0},
	{Address: solana.SystemProgramID, FeePercent: 0},
}

// IsPlaceholder reports whether the wallet occupies an empty payout slot.
func (w FeeWallet) IsPlaceholder() bool {
	return w.Address.Equals(SystemProgramID)
}
