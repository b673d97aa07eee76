package tx

import (
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/gagliardetto/solana-go"
)

// SignatureSize is the length in bytes of an ed25519 transaction signature.
const SignatureSize = 64

// ParseSignature decodes a base58 transaction signature.
func ParseSignature(s string) (sig solana.Signature, err error) {
	if s == "" {
		err = fmt.Errorf("%w: empty string", ErrInvalidSignature)
		return
	}

	// base58.Decode returns an empty slice on characters outside the alphabet
	raw := base58.Decode(s)
	if len(raw) != SignatureSize {
		err = fmt.Errorf("%w: %q decodes to %d bytes, want %d", ErrInvalidSignature, s, len(raw), SignatureSize)
		return
	}

	copy(sig[:], raw)

	return
}
