package solana

import (
	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"solapay/internal/domain"
)

// Validation bounds for base58-encoded identifiers. A 32-byte pubkey
// encodes to 32-44 characters; a 64-byte signature to 86-88.
const (
	MinAddressLen   = 30
	MinSignatureLen = 10
	pubkeyBytes     = 32
	signatureBytes  = 64
)

// ValidateAddress checks the minimum plausible length of an account
// identifier. Client-asserted transfer endpoints are accepted on length
// alone; the chain already settled the transfer either way.
func ValidateAddress(field, s string) error {
	if len(s) < MinAddressLen {
		return domain.NewValidationError(field, "address too short")
	}
	return nil
}

// ValidatePublicKey additionally requires a base58 decoding of exactly
// 32 bytes. Keys that reach the node, like balance reads, get the full
// check.
func ValidatePublicKey(field, s string) error {
	if err := ValidateAddress(field, s); err != nil {
		return err
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return domain.NewValidationError(field, "not valid base58")
	}
	if len(decoded) != pubkeyBytes {
		return domain.NewValidationError(field, "decoded key is not 32 bytes")
	}
	return nil
}

// ValidateAddressStrict requires a 32-byte key that is a valid ed25519
// point. PDAs are off-curve, so this only suits wallet keys.
func ValidateAddressStrict(field, s string) error {
	if err := ValidatePublicKey(field, s); err != nil {
		return err
	}
	decoded, _ := base58.Decode(s)
	if !isOnCurve(decoded) {
		return domain.NewValidationError(field, "key is not on the ed25519 curve")
	}
	return nil
}

// ValidateSignature checks that s is a plausible transaction signature.
func ValidateSignature(field, s string) error {
	if len(s) < MinSignatureLen {
		return domain.NewValidationError(field, "signature too short")
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return domain.NewValidationError(field, "not valid base58")
	}
	// Wallets occasionally hand back truncated references during
	// simulation, so only fully-decoded signatures are length-checked.
	if len(decoded) > signatureBytes {
		return domain.NewValidationError(field, "decoded signature too long")
	}
	return nil
}

func isOnCurve(point []byte) bool {
	if len(point) != pubkeyBytes {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
