package components

import "errors"

// ErrEncoding signals that the transaction could not be serialized; no request was sent
var ErrEncoding = errors.New("transaction encoding failed")

// ErrTransport signals a network level failure while talking to the relay
var ErrTransport = errors.New("relay transport failure")

// ErrResponseParse signals a relay reply that is not valid JSON
var ErrResponseParse = errors.New("relay response could not be parsed")

// ErrProtocol signals a relay reply without a usable signature
var ErrProtocol = errors.New("relay accepted the call but returned no usable signature")

// ErrPersistence signals that the signature could not be written to the signature log
var ErrPersistence = errors.New("signature log write failed")

// ErrNilRelay signals that a nil relay client has been provided
var ErrNilRelay = errors.New("nil relay client")

// ErrNilSignatureLog signals that a nil signature log has been provided
var ErrNilSignatureLog = errors.New("nil signature log")
