package submitter_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fivebinaries/go-relay-submit/components"
	"github.com/fivebinaries/go-relay-submit/components/submitter"
	"github.com/fivebinaries/go-relay-submit/e2e/relayfw"
	"github.com/fivebinaries/go-relay-submit/metrics"
	"github.com/fivebinaries/go-relay-submit/node"
	"github.com/fivebinaries/go-relay-submit/siglog"
	"github.com/fivebinaries/go-relay-submit/tx"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	relay     *relayfw.MockRelay
	submitter *submitter.Submitter
	metrics   *metrics.RelayMetrics
	logPath   string
}

func newHarness(t *testing.T, reply relayfw.ReplyFunc, logPath string) *harness {
	t.Helper()

	relay := relayfw.NewMockRelay(t, reply)

	m, err := metrics.NewRelayMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	client, err := node.NewRelayClient(node.RelayConfig{
		Endpoint: relay.URL(),
		HTTP:     relay.Client(),
	}, m)
	require.NoError(t, err)

	if logPath == "" {
		logPath = filepath.Join(t.TempDir(), "signatures.log")
	}

	s, err := submitter.New(client, siglog.New(logPath), m)
	require.NoError(t, err)

	return &harness{
		relay:     relay,
		submitter: s,
		metrics:   m,
		logPath:   logPath,
	}
}

func transfer(t *testing.T, lamports uint64) *solana.Transaction {
	t.Helper()

	transaction, err := relayfw.FixtureTransfer(lamports)
	require.NoError(t, err)

	return transaction
}

// firstSignature runs on the relay goroutine, so it cannot fail the test.
func firstSignature(encoded string) string {
	transaction, err := tx.DecodeTransaction(encoded)
	if err != nil || len(transaction.Signatures) == 0 {
		return ""
	}

	return transaction.Signatures[0].String()
}

func TestSubmitScenario(t *testing.T) {
	transaction := transfer(t, 1000)
	want := transaction.Signatures[0]
	h := newHarness(t, relayfw.SignatureReply(want.String()), "")

	receipt, err := h.submitter.Submit(context.Background(), transaction, true, false, "tkn123")
	require.NoError(t, err)
	assert.Equal(t, want, receipt.Signature)
	assert.Equal(t, components.StageDone, receipt.Stage)
	assert.True(t, receipt.Logged())

	requests := h.relay.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "tkn123", requests[0].Authorization)

	data, err := os.ReadFile(h.logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasSuffix(lines[0], want.String()))

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Submissions().WithLabelValues(metrics.OutcomeSuccess)))
}

func TestSubmitManyLogsEveryOne(t *testing.T) {
	const n = 5

	h := newHarness(t, func(req relayfw.RecordedRequest) (int, string) {
		body, err := req.JSON()
		if err != nil {
			return http.StatusBadRequest, `{"error":"bad body"}`
		}
		// echo the signature embedded in the submitted transaction
		encoded := body["transactions"].([]interface{})[0].(string)
		return http.StatusOK, `{"signature":"` + firstSignature(encoded) + `"}`
	}, "")

	returned := make(map[solana.Signature]bool)
	for i := 0; i < n; i++ {
		receipt, err := h.submitter.Submit(context.Background(), transfer(t, uint64(100+i)), false, true, "tkn")
		require.NoError(t, err)
		returned[receipt.Signature] = true
	}
	require.Len(t, returned, n)

	records, err := siglog.ReadRecords(h.logPath)
	require.NoError(t, err)
	require.Len(t, records, n)
	for _, record := range records {
		assert.True(t, returned[record.Signature])
	}
}

func TestSubmitMissingSignatureLeavesNoLog(t *testing.T) {
	h := newHarness(t, relayfw.StaticReply(http.StatusOK, `{"status":"ok"}`), "")

	receipt, err := h.submitter.Submit(context.Background(), transfer(t, 1), false, false, "tkn")
	assert.ErrorIs(t, err, components.ErrProtocol)
	assert.True(t, receipt.Signature.IsZero())
	assert.Empty(t, receipt.Stage)

	_, statErr := os.Stat(h.logPath)
	assert.True(t, os.IsNotExist(statErr))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Submissions().WithLabelValues(string(components.StageSubmitting))))
}

func TestSubmitTransportFailureLeavesNoLog(t *testing.T) {
	h := newHarness(t, relayfw.SignatureReply("unused"), "")
	h.relay.Close()

	_, err := h.submitter.Submit(context.Background(), transfer(t, 1), false, false, "tkn")
	assert.ErrorIs(t, err, components.ErrTransport)

	var submitErr *components.SubmitError
	require.True(t, errors.As(err, &submitErr))
	assert.Equal(t, components.StageSubmitting, submitErr.Stage)

	_, statErr := os.Stat(h.logPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSubmitEncodingFailureSendsNothing(t *testing.T) {
	h := newHarness(t, relayfw.SignatureReply("unused"), "")

	transaction := transfer(t, 1)
	transaction.Signatures = nil

	_, err := h.submitter.Submit(context.Background(), transaction, false, false, "tkn")
	assert.ErrorIs(t, err, components.ErrEncoding)

	var submitErr *components.SubmitError
	require.True(t, errors.As(err, &submitErr))
	assert.Equal(t, components.StageEncoding, submitErr.Stage)
	assert.Empty(t, h.relay.Requests())

	_, err = h.submitter.Submit(context.Background(), nil, false, false, "tkn")
	assert.ErrorIs(t, err, components.ErrEncoding)
	assert.Empty(t, h.relay.Requests())
}

func TestSubmitUnwritableLogKeepsSignature(t *testing.T) {
	transaction := transfer(t, 77)
	want := transaction.Signatures[0]
	h := newHarness(t, relayfw.SignatureReply(want.String()), t.TempDir())

	receipt, err := h.submitter.Submit(context.Background(), transaction, true, true, "tkn")
	require.NoError(t, err)
	assert.Equal(t, want, receipt.Signature)
	assert.Equal(t, components.StageDone, receipt.Stage)
	assert.False(t, receipt.Logged())
	assert.ErrorIs(t, receipt.LogErr, components.ErrPersistence)

	var submitErr *components.SubmitError
	require.True(t, errors.As(receipt.LogErr, &submitErr))
	assert.Equal(t, components.StageLogging, submitErr.Stage)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.LogFailures()))
}

type failingRelay struct{ err error }

func (f failingRelay) Submit(context.Context, string, node.SubmitOptions, string) (solana.Signature, error) {
	return solana.Signature{}, f.err
}

func TestSubmitWrapsForeignRelayErrors(t *testing.T) {
	cause := errors.New("boom")
	s, err := submitter.New(failingRelay{err: cause}, siglog.New(filepath.Join(t.TempDir(), "s.log")), nil)
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), transfer(t, 1), false, false, "tkn")
	assert.ErrorIs(t, err, components.ErrTransport)
	assert.ErrorIs(t, err, cause)
}

func TestNewValidation(t *testing.T) {
	_, err := submitter.New(nil, siglog.New(""), nil)
	assert.ErrorIs(t, err, components.ErrNilRelay)

	_, err = submitter.New(failingRelay{}, nil, nil)
	assert.ErrorIs(t, err, components.ErrNilSignatureLog)
}
