package tx

import (
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Envelope is the CBOR record a signer hands over to the submitter.
type Envelope struct {
	_           struct{} `cbor:",toarray"`
	Transaction []byte
	Label       string
}

// NewEnvelope wraps the wire bytes of a signed transaction.
func NewEnvelope(transaction *solana.Transaction, label string) (*Envelope, error) {
	txBytes, err := Bytes(transaction)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Transaction: txBytes,
		Label:       label,
	}, nil
}

func (e *Envelope) SolanaTransaction() (*solana.Transaction, error) {
	return FromBytes(e.Transaction)
}

func WriteEnvelopeFile(path string, envelope *Envelope) error {
	data, err := cborEnc.Marshal(envelope)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

func ReadEnvelopeFile(path string) (*Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var envelope Envelope
	if err := cborDec.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope %s: %w", path, err)
	}

	return &envelope, nil
}

// Format is the on-disk representation of a signed transaction file.
type Format string

const (
	FormatBase64 Format = "base64"
	FormatBinary Format = "binary"
	FormatCBOR   Format = "cbor"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatBase64, FormatBinary, FormatCBOR:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// LoadTransactionFile reads a signed transaction stored in the given format.
func LoadTransactionFile(path string, format Format) (*solana.Transaction, error) {
	switch format {
	case FormatCBOR:
		envelope, err := ReadEnvelopeFile(path)
		if err != nil {
			return nil, err
		}
		return envelope.SolanaTransaction()
	case FormatBase64:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return DecodeTransaction(strings.TrimSpace(string(data)))
	case FormatBinary:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return FromBytes(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
