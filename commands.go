package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/fivebinaries/go-relay-submit/config"
	"github.com/fivebinaries/go-relay-submit/siglog"
	"github.com/fivebinaries/go-relay-submit/tx"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

type cli struct {
	configFile string
	envFiles   []string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "relay-submit",
		Short:        "Submit signed Solana transactions through a block-builder relay",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{
				ConfigFile: c.configFile,
				EnvFiles:   c.envFiles,
				Flags:      cmd.Flags(),
			})
			if err != nil {
				return err
			}

			if err := logger.SetLogLevel(cfg.LogLevel); err != nil {
				return fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
			}

			c.cfg = cfg

			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configFile, "config", "", "config file (yaml, json or toml)")
	pf.StringSliceVar(&c.envFiles, "env-file", nil, "env files to load (default .env when present)")
	pf.String("relay-url", "", "relay submission endpoint")
	pf.String("auth-token", "", "relay authorization token")
	pf.String("schema", "", "relay request body: batch or single")
	pf.Uint64("tip", 0, "tip in lamports, single schema only")
	pf.Duration("timeout", 0, "relay call deadline")
	pf.String("signature-log", "", "signature log path")
	pf.String("log-level", "", "log level pattern, e.g. *:DEBUG")

	root.AddCommand(c.submitCmd(), c.historyCmd(), c.envelopeCmd(), c.serveCmd())

	return root
}

func (c *cli) submitCmd() *cobra.Command {
	var (
		file          string
		format        string
		skipPreflight bool
		staked        bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a signed transaction and record its signature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := tx.ParseFormat(format)
			if err != nil {
				return err
			}

			transaction, err := tx.LoadTransactionFile(file, f)
			if err != nil {
				return fmt.Errorf("load %s: %w", file, err)
			}

			w, err := newWire(c.cfg, prometheus.NewRegistry())
			if err != nil {
				return err
			}

			receipt, err := w.submitter.Submit(cmd.Context(), transaction, skipPreflight, staked, c.cfg.AuthToken)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), receipt.Signature.String())
			if !receipt.Logged() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: signature not recorded in %s: %v\n", w.sigLog.Path(), receipt.LogErr)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "signed transaction file")
	cmd.Flags().StringVar(&format, "format", string(tx.FormatBase64), "file format: base64, binary or cbor")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "ask the relay to skip preflight simulation")
	cmd.Flags().BoolVar(&staked, "staked", false, "ask the relay to route through staked connections")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (c *cli) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the recorded signatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := siglog.ReadRecords(c.cfg.SignatureLog)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if err != nil {
				return err
			}

			for _, record := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n",
					record.Timestamp.Format(siglog.TimestampLayout), record.Signature)
			}

			return nil
		},
	}
}

func (c *cli) envelopeCmd() *cobra.Command {
	var (
		file   string
		format string
		out    string
		label  string
	)

	cmd := &cobra.Command{
		Use:   "envelope",
		Short: "Wrap a signed transaction into a CBOR envelope file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := tx.ParseFormat(format)
			if err != nil {
				return err
			}

			transaction, err := tx.LoadTransactionFile(file, f)
			if err != nil {
				return fmt.Errorf("load %s: %w", file, err)
			}

			envelope, err := tx.NewEnvelope(transaction, label)
			if err != nil {
				return err
			}

			return tx.WriteEnvelopeFile(out, envelope)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "signed transaction file")
	cmd.Flags().StringVar(&format, "format", string(tx.FormatBase64), "input format: base64 or binary")
	cmd.Flags().StringVarP(&out, "out", "o", "", "envelope output path")
	cmd.Flags().StringVar(&label, "label", "", "free-form envelope label")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP submission gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()

			w, err := newWire(c.cfg, reg)
			if err != nil {
				return err
			}

			g := &gateway{
				submitter: w.submitter,
				authToken: c.cfg.AuthToken,
				timeout:   c.cfg.Timeout,
			}

			srv := &http.Server{
				Addr:              c.cfg.ListenAddress,
				Handler:           g.routes(reg),
				ReadHeaderTimeout: 10 * time.Second,
			}

			log.Info("gateway listening", "address", srv.Addr, "relay", w.relay.Endpoint(), "schema", w.relay.Schema())

			return serve(cmd.Context(), srv)
		},
	}

	cmd.Flags().String("listen", "", "gateway listen address (default :8080)")

	return cmd
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
