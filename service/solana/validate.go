package solana

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ValidateAddress checks that s is a base58 encoded 32-byte public key.
func ValidateAddress(s string) error {
	if _, err := solana.PublicKeyFromBase58(s); err != nil {
		return fmt.Errorf("invalid address %q: %w", s, err)
	}
	return nil
}

// ValidateSignature checks that s is a base58 encoded 64-byte transaction signature.
func ValidateSignature(s string) error {
	if _, err := solana.SignatureFromBase58(s); err != nil {
		return fmt.Errorf("invalid signature %q: %w", s, err)
	}
	return nil
}
