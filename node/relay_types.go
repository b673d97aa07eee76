package node

import (
	"fmt"
	"strings"
)

// Schema selects the request body contract of the relay. A deployment
// targets exactly one schema.
type Schema string

const (
	// SchemaBatch posts {"transactions": [<base64>]}.
	SchemaBatch Schema = "batch"
	// SchemaSingle posts one transaction with its submission options and tip.
	SchemaSingle Schema = "single"
)

func ParseSchema(s string) (Schema, error) {
	switch schema := Schema(strings.ToLower(strings.TrimSpace(s))); schema {
	case "":
		return SchemaBatch, nil
	case SchemaBatch, SchemaSingle:
		return schema, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSchema, s)
	}
}

// SubmitOptions are the per-call flags understood by the relay.
type SubmitOptions struct {
	SkipPreflight bool
	UseStakedRPCs bool
}

type batchSubmission struct {
	Transactions []string `json:"transactions"`
}

type singleSubmission struct {
	Transaction   singleSubmissionTransaction `json:"transaction"`
	SkipPreFlight bool                        `json:"skipPreFlight"`
	UseStakedRPCs bool                        `json:"useStakedRPCs"`
	Tip           uint64                      `json:"tip"`
}

type singleSubmissionTransaction struct {
	Content string `json:"content"`
}

func (s Schema) requestBody(encodedTx string, opts SubmitOptions, tip uint64) interface{} {
	if s == SchemaSingle {
		return singleSubmission{
			Transaction: singleSubmissionTransaction{
				Content: encodedTx,
			},
			SkipPreFlight: opts.SkipPreflight,
			UseStakedRPCs: opts.UseStakedRPCs,
			Tip:           tip,
		}
	}

	return batchSubmission{
		Transactions: []string{encodedTx},
	}
}
