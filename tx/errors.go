package tx

import "errors"

// ErrNilTransaction signals that a nil transaction has been provided
var ErrNilTransaction = errors.New("nil transaction")

// ErrNotFullySigned signals that the transaction signatures do not match the required signers
var ErrNotFullySigned = errors.New("transaction is not fully signed")

// ErrEmptyTransaction signals that no transaction bytes were provided
var ErrEmptyTransaction = errors.New("empty transaction data")

// ErrInvalidSignature signals a string that is not a base58 encoded 64 byte signature
var ErrInvalidSignature = errors.New("invalid transaction signature")

// ErrUnknownFormat signals an unsupported transaction file format
var ErrUnknownFormat = errors.New("unknown transaction format")
