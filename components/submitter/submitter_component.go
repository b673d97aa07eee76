package submitter

import (
	"context"
	"errors"

	"github.com/fivebinaries/go-relay-submit/components"
	"github.com/fivebinaries/go-relay-submit/metrics"
	"github.com/fivebinaries/go-relay-submit/node"
	"github.com/fivebinaries/go-relay-submit/tx"
	"github.com/gagliardetto/solana-go"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("components/submitter")

type Relay interface {
	Submit(ctx context.Context, encodedTx string, opts node.SubmitOptions, authToken string) (solana.Signature, error)
}

type SignatureLog interface {
	Append(signature solana.Signature) error
}

// Submitter runs the encode, submit and log stages of one submission.
// It keeps no state between calls and is safe for concurrent use when
// its relay and signature log are.
type Submitter struct {
	relay   Relay
	sigLog  SignatureLog
	metrics *metrics.RelayMetrics
}

func New(relay Relay, sigLog SignatureLog, m *metrics.RelayMetrics) (*Submitter, error) {
	if relay == nil {
		return nil, components.ErrNilRelay
	}
	if sigLog == nil {
		return nil, components.ErrNilSignatureLog
	}

	return &Submitter{
		relay:   relay,
		sigLog:  sigLog,
		metrics: m,
	}, nil
}

// Submit encodes the signed transaction, sends it to the relay and logs the
// returned signature.
//
// A failed encoding or relay call returns a *components.SubmitError naming
// the stage. A failed log write does not: the receipt still carries the
// validated signature and reports the write failure in LogErr.
func (s *Submitter) Submit(
	ctx context.Context,
	transaction *solana.Transaction,
	skipPreflight bool,
	useStakedRouting bool,
	authToken string,
) (components.Receipt, error) {
	stage := components.StageEncoding
	log.Trace("submission stage", "stage", stage)

	encodedTx, err := tx.EncodeTransaction(transaction)
	if err != nil {
		return components.Receipt{}, s.fail(components.NewSubmitError(stage, components.ErrEncoding, err))
	}

	stage = components.StageSubmitting
	log.Trace("submission stage", "stage", stage, "size", len(encodedTx))

	signature, err := s.relay.Submit(ctx, encodedTx, node.SubmitOptions{
		SkipPreflight: skipPreflight,
		UseStakedRPCs: useStakedRouting,
	}, authToken)
	if err != nil {
		var submitErr *components.SubmitError
		if !errors.As(err, &submitErr) {
			submitErr = components.NewSubmitError(stage, components.ErrTransport, err)
		}
		return components.Receipt{}, s.fail(submitErr)
	}

	stage = components.StageLogging
	log.Trace("submission stage", "stage", stage, "signature", signature.String())

	receipt := components.Receipt{Signature: signature}
	if err = s.sigLog.Append(signature); err != nil {
		receipt.LogErr = components.NewSubmitError(stage, components.ErrPersistence, err)
		s.metrics.IncLogFailure()
		log.Warn("transaction submitted but signature was not logged",
			"signature", signature.String(),
			"error", err.Error(),
		)
	}

	receipt.Stage = components.StageDone
	log.Trace("submission stage", "stage", receipt.Stage, "signature", signature.String())

	s.metrics.IncSubmission(metrics.OutcomeSuccess)
	log.Info("transaction submitted", "signature", signature.String(), "logged", receipt.Logged())

	return receipt, nil
}

func (s *Submitter) fail(err *components.SubmitError) error {
	s.metrics.IncSubmission(string(err.Stage))
	log.Debug("submission failed", "stage", err.Stage, "error", err.Error())

	return err
}
