// Package relayfw is the test framework of the relay submitter: a mock
// relay endpoint plus deterministic keys and signed transactions.
package relayfw

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/tyler-smith/go-bip39"
)

// FixtureMnemonic is the BIP-39 test vector mnemonic. Never fund its keys.
const FixtureMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// FixtureBlockhash stands in for a recent blockhash; the mock relay does not check it.
var FixtureBlockhash = solana.Hash{0x01, 0x02, 0x03, 0x04}

var errInvalidMnemonic = errors.New("invalid mnemonic")

// KeyFromMnemonic derives a deterministic ed25519 key. Different indexes
// use different BIP-39 passphrases and therefore unrelated seeds.
func KeyFromMnemonic(mnemonic string, index uint32) (solana.PrivateKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errInvalidMnemonic
	}

	seed := bip39.NewSeed(mnemonic, fmt.Sprintf("relayfw/%d", index))

	return solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])), nil
}

// NewSignedTransfer builds a system transfer of lamports from payer to
// recipient and signs it with payer.
func NewSignedTransfer(payer solana.PrivateKey, recipient solana.PublicKey, lamports uint64) (*solana.Transaction, error) {
	transaction, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(lamports, payer.PublicKey(), recipient).Build(),
		},
		FixtureBlockhash,
		solana.TransactionPayer(payer.PublicKey()),
	)
	if err != nil {
		return nil, err
	}

	_, err = transaction.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// FixtureTransfer returns a signed transfer between the first two fixture
// keys. Different amounts produce different signatures.
func FixtureTransfer(lamports uint64) (*solana.Transaction, error) {
	payer, err := KeyFromMnemonic(FixtureMnemonic, 0)
	if err != nil {
		return nil, err
	}

	recipient, err := KeyFromMnemonic(FixtureMnemonic, 1)
	if err != nil {
		return nil, err
	}

	return NewSignedTransfer(payer, recipient.PublicKey(), lamports)
}
