package ledger

import (
	"errors"
	"fmt"
	"os"

	solana "github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

// EnvPrivateKey names the variable holding the authority key.
const EnvPrivateKey = "SOLANA_PRIVATE_KEY_BASE58"

// ErrNoAuthorityKey is returned when neither the environment nor config carries a key.
var ErrNoAuthorityKey = errors.New(EnvPrivateKey + " not set")

// LoadPrivateKeyFromEnv reads the authority key from the environment, loading
// a .env file first when one exists.
func LoadPrivateKeyFromEnv() (solana.PrivateKey, error) {
	return LoadAuthority("")
}

// LoadAuthority prefers the environment and falls back to a configured key.
func LoadAuthority(fallbackBase58 string) (solana.PrivateKey, error) {
	_ = godotenv.Load() // best-effort
	b58 := os.Getenv(EnvPrivateKey)
	if b58 == "" {
		b58 = fallbackBase58
	}
	if b58 == "" {
		return nil, ErrNoAuthorityKey
	}
	key, err := solana.PrivateKeyFromBase58(b58)
	if err != nil {
		return nil, fmt.Errorf("parse authority key: %w", err)
	}
	return key, nil
}
