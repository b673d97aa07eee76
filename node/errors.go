package node

import "errors"

// ErrEmptyEndpoint signals that no relay endpoint has been configured
var ErrEmptyEndpoint = errors.New("empty relay endpoint")

// ErrInvalidEndpoint signals a relay endpoint that is not an absolute http(s) URL
var ErrInvalidEndpoint = errors.New("invalid relay endpoint")

// ErrUnknownSchema signals an unsupported relay request schema
var ErrUnknownSchema = errors.New("unknown relay schema")

// ErrNegativeTimeout signals a negative relay timeout
var ErrNegativeTimeout = errors.New("relay timeout cannot be negative")

// ErrResponseTooLarge signals a relay reply larger than the client reads
var ErrResponseTooLarge = errors.New("relay response too large")

var (
	errEmptyEncodedTx   = errors.New("empty encoded transaction")
	errSignatureMissing = errors.New("signature not found in response")
)
