package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fivebinaries/go-relay-submit/components"
	"github.com/fivebinaries/go-relay-submit/metrics"
	"github.com/fivebinaries/go-relay-submit/tx"
	"github.com/gagliardetto/solana-go"
	"github.com/hashicorp/go-cleanhttp"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("node/relay")

const (
	DefaultRelayURL = "https://ore-ny.solana.dex.blxrbdn.com/api/v2/mine-ore"
	// DefaultTip is 0.0001 SOL in lamports.
	DefaultTip     = uint64(100_000)
	DefaultTimeout = 30 * time.Second

	signatureField  = "signature"
	maxResponseSize = 1 << 20
)

type RelayConfig struct {
	Endpoint string
	Schema   Schema
	// Tip is only sent with SchemaSingle. Zero means DefaultTip, so a
	// zero tip cannot be requested.
	Tip uint64
	// Timeout bounds the whole HTTP exchange. Zero means DefaultTimeout.
	// Ignored when HTTP is set.
	Timeout time.Duration
	HTTP    *http.Client
}

// RelayClient submits encoded transactions to a single relay endpoint.
// It never retries: resubmitting a transaction is not always safe.
type RelayClient struct {
	endpoint string
	schema   Schema
	tip      uint64
	client   *http.Client
	metrics  *metrics.RelayMetrics
}

func NewRelayClient(cfg RelayConfig, m *metrics.RelayMetrics) (*RelayClient, error) {
	if cfg.Endpoint == "" {
		return nil, ErrEmptyEndpoint
	}

	u, err := url.Parse(cfg.Endpoint)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, cfg.Endpoint)
	}

	schema, err := ParseSchema(string(cfg.Schema))
	if err != nil {
		return nil, err
	}

	if cfg.Timeout < 0 {
		return nil, ErrNegativeTimeout
	}

	client := cfg.HTTP
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
		client.Timeout = cfg.Timeout
		if client.Timeout == 0 {
			client.Timeout = DefaultTimeout
		}
	}

	tip := cfg.Tip
	if tip == 0 {
		tip = DefaultTip
	}

	if u.Scheme == "http" {
		log.Warn("relay endpoint is not using TLS", "endpoint", cfg.Endpoint)
	}

	return &RelayClient{
		endpoint: cfg.Endpoint,
		schema:   schema,
		tip:      tip,
		client:   client,
		metrics:  m,
	}, nil
}

func (r *RelayClient) Endpoint() string { return r.endpoint }

func (r *RelayClient) Schema() Schema { return r.schema }

func (r *RelayClient) Tip() uint64 { return r.tip }

// Submit posts one encoded transaction to the relay and returns the
// signature from its reply. Errors are *components.SubmitError values of
// kind ErrTransport, ErrResponseParse or ErrProtocol.
func (r *RelayClient) Submit(ctx context.Context, encodedTx string, opts SubmitOptions, authToken string) (solana.Signature, error) {
	if encodedTx == "" {
		return solana.Signature{}, components.NewSubmitError(components.StageEncoding, components.ErrEncoding, errEmptyEncodedTx)
	}

	requestBytes, err := json.Marshal(r.schema.requestBody(encodedTx, opts, r.tip))
	if err != nil {
		return solana.Signature{}, components.NewSubmitError(components.StageEncoding, components.ErrEncoding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(requestBytes))
	if err != nil {
		return solana.Signature{}, components.NewSubmitError(components.StageSubmitting, components.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authToken)

	log.Debug("submitting transaction to relay",
		"endpoint", r.endpoint,
		"schema", r.schema,
		"skipPreflight", opts.SkipPreflight,
		"useStakedRPCs", opts.UseStakedRPCs,
		"bodySize", len(requestBytes),
	)

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		r.metrics.ObserveRoundTrip(time.Since(start))
		return solana.Signature{}, components.NewSubmitError(components.StageSubmitting, components.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	r.metrics.ObserveRoundTrip(time.Since(start))
	if err != nil {
		submitErr := components.NewSubmitError(components.StageSubmitting, components.ErrTransport, fmt.Errorf("read response: %w", err))
		submitErr.StatusCode = resp.StatusCode
		return solana.Signature{}, submitErr
	}

	if len(body) > maxResponseSize {
		submitErr := components.NewSubmitError(components.StageSubmitting, components.ErrResponseParse,
			fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, maxResponseSize))
		submitErr.StatusCode = resp.StatusCode
		submitErr.Raw = string(body[:maxResponseSize])
		return solana.Signature{}, submitErr
	}

	log.Trace("relay response", "status", resp.StatusCode, "body", string(body))

	signature, replyErr := signatureFromResponse(body)
	if replyErr != nil {
		replyErr.StatusCode = resp.StatusCode
		replyErr.Raw = string(body)
		return solana.Signature{}, replyErr
	}

	log.Debug("relay accepted transaction", "signature", signature.String(), "status", resp.StatusCode)

	return signature, nil
}

// signatureFromResponse expects a JSON object with a top-level string
// field "signature" holding a valid base58 signature.
func signatureFromResponse(body []byte) (solana.Signature, *components.SubmitError) {
	var reply interface{}
	if err := json.Unmarshal(body, &reply); err != nil {
		return solana.Signature{}, components.NewSubmitError(components.StageSubmitting, components.ErrResponseParse, err)
	}

	fields, ok := reply.(map[string]interface{})
	if !ok {
		return solana.Signature{}, components.NewSubmitError(components.StageSubmitting, components.ErrProtocol,
			fmt.Errorf("response is a %T, not an object", reply))
	}

	value, ok := fields[signatureField]
	if !ok {
		return solana.Signature{}, components.NewSubmitError(components.StageSubmitting, components.ErrProtocol,
			errSignatureMissing)
	}

	s, ok := value.(string)
	if !ok {
		return solana.Signature{}, components.NewSubmitError(components.StageSubmitting, components.ErrProtocol,
			fmt.Errorf("signature field is a %T, not a string", value))
	}

	signature, err := tx.ParseSignature(s)
	if err != nil {
		return solana.Signature{}, components.NewSubmitError(components.StageSubmitting, components.ErrProtocol, err)
	}

	return signature, nil
}
