package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fivebinaries/go-relay-submit/components"
	"github.com/fivebinaries/go-relay-submit/tx"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxRequestSize = 64 << 10

type SubmitTransactionRequest struct {
	Transaction   string `json:"transaction"`
	SkipPreFlight bool   `json:"skipPreFlight"`
	UseStakedRPCs bool   `json:"useStakedRPCs"`
}

type SubmitTransactionResponse struct {
	Signature string `json:"signature,omitempty"`
	LogError  string `json:"logError,omitempty"`
	Stage     string `json:"stage,omitempty"`
	Error     string `json:"error,omitempty"`
}

type transactionSubmitter interface {
	Submit(ctx context.Context, transaction *solana.Transaction, skipPreflight, useStakedRouting bool, authToken string) (components.Receipt, error)
}

type gateway struct {
	submitter transactionSubmitter
	// authToken is used when the caller sends no Authorization header.
	authToken string
	timeout   time.Duration
}

func (g *gateway) routes(gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/submitTransaction", g.submitTransaction)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return mux
}

func (g *gateway) submitTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, SubmitTransactionResponse{Error: "method not allowed"})
		return
	}

	var req SubmitTransactionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestSize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, SubmitTransactionResponse{Error: err.Error()})
		return
	}

	transaction, err := tx.DecodeTransaction(req.Transaction)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, SubmitTransactionResponse{
			Stage: string(components.StageEncoding),
			Error: err.Error(),
		})
		return
	}

	authToken := r.Header.Get("Authorization")
	if authToken == "" {
		authToken = g.authToken
	}

	ctx := r.Context()
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	receipt, err := g.submitter.Submit(ctx, transaction, req.SkipPreFlight, req.UseStakedRPCs, authToken)
	if err != nil {
		status, resp := http.StatusBadGateway, SubmitTransactionResponse{Error: err.Error()}

		var submitErr *components.SubmitError
		if errors.As(err, &submitErr) {
			resp.Stage = string(submitErr.Stage)
			if submitErr.Stage == components.StageEncoding {
				status = http.StatusBadRequest
			}
		}

		writeJSON(w, status, resp)
		return
	}

	resp := SubmitTransactionResponse{Signature: receipt.Signature.String()}
	if receipt.LogErr != nil {
		resp.LogError = receipt.LogErr.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Debug("write response", "error", err.Error())
	}
}
