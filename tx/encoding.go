package tx

import (
	"encoding/base64"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var cborEnc, _ = cbor.CanonicalEncOptions().EncMode()
var cborDec, _ = cbor.DecOptions{}.DecMode()

// Bytes returns the wire serialization of a signed transaction.
// The transaction must carry exactly one signature per required signer.
func Bytes(transaction *solana.Transaction) ([]byte, error) {
	if transaction == nil {
		return nil, ErrNilTransaction
	}

	required := int(transaction.Message.Header.NumRequiredSignatures)
	if len(transaction.Signatures) == 0 || len(transaction.Signatures) != required {
		return nil, fmt.Errorf("%w: %d signatures, %d required", ErrNotFullySigned, len(transaction.Signatures), required)
	}

	txBytes, err := transaction.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("serialize transaction: %w", err)
	}

	return txBytes, nil
}

// EncodeTransaction serializes a signed transaction and encodes the bytes
// with the standard, unwrapped base64 alphabet.
func EncodeTransaction(transaction *solana.Transaction) (string, error) {
	txBytes, err := Bytes(transaction)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(txBytes), nil
}

// DecodeTransaction is the inverse of EncodeTransaction.
func DecodeTransaction(encoded string) (*solana.Transaction, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64 transaction: %w", err)
	}

	return FromBytes(data)
}

// FromBytes deserializes a transaction from its wire format.
func FromBytes(data []byte) (*solana.Transaction, error) {
	if len(data) == 0 {
		return nil, ErrEmptyTransaction
	}

	transaction, err := solana.TransactionFromDecoder(bin.NewBinDecoder(data))
	if err != nil {
		return nil, fmt.Errorf("deserialize transaction: %w", err)
	}

	return transaction, nil
}
