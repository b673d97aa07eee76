package main

import (
	"github.com/fivebinaries/go-relay-submit/components/submitter"
	"github.com/fivebinaries/go-relay-submit/config"
	"github.com/fivebinaries/go-relay-submit/metrics"
	"github.com/fivebinaries/go-relay-submit/node"
	"github.com/fivebinaries/go-relay-submit/siglog"
	"github.com/prometheus/client_golang/prometheus"
)

// wire bundles the components built from one configuration.
type wire struct {
	relay     *node.RelayClient
	sigLog    *siglog.Log
	submitter *submitter.Submitter
}

func newWire(cfg *config.Config, reg prometheus.Registerer) (*wire, error) {
	m, err := metrics.NewRelayMetrics(reg)
	if err != nil {
		return nil, err
	}

	relay, err := node.NewRelayClient(cfg.RelayConfig(), m)
	if err != nil {
		return nil, err
	}

	sigLog := siglog.New(cfg.SignatureLog)

	s, err := submitter.New(relay, sigLog, m)
	if err != nil {
		return nil, err
	}

	return &wire{
		relay:     relay,
		sigLog:    sigLog,
		submitter: s,
	}, nil
}
