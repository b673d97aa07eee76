// Package config loads the relay submitter settings.
//
// Values come, from lowest to highest precedence, from built-in defaults, an
// optional config file (any format viper reads), the environment, and
// command line flags. Environment variables may be provided through .env
// files; variables already set in the process environment win over them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/fivebinaries/go-relay-submit/node"
	"github.com/fivebinaries/go-relay-submit/siglog"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys double as environment variable names once upper-cased.
const (
	KeyRelayURL      = "relay_url"
	KeyAuthToken     = "relay_auth_token"
	KeySchema        = "relay_schema"
	KeyTip           = "relay_tip"
	KeyTimeout       = "relay_timeout"
	KeySignatureLog  = "signature_log"
	KeyListenAddress = "listen_address"
	KeyLogLevel      = "log_level"
)

const defaultEnvFile = ".env"

// flagNames maps config keys to the command line flags that override them.
var flagNames = map[string]string{
	KeyRelayURL:      "relay-url",
	KeyAuthToken:     "auth-token",
	KeySchema:        "schema",
	KeyTip:           "tip",
	KeyTimeout:       "timeout",
	KeySignatureLog:  "signature-log",
	KeyListenAddress: "listen",
	KeyLogLevel:      "log-level",
}

// ErrMissingRelayURL signals an empty relay endpoint
var ErrMissingRelayURL = errors.New("relay url is not configured")

// ErrInvalidTimeout signals a non positive relay timeout
var ErrInvalidTimeout = errors.New("relay timeout must be positive")

type Config struct {
	RelayURL      string
	AuthToken     string
	Schema        node.Schema
	Tip           uint64
	Timeout       time.Duration
	SignatureLog  string
	ListenAddress string
	LogLevel      string
}

type Options struct {
	// ConfigFile is read when set.
	ConfigFile string
	// EnvFiles are loaded into the environment. When empty, ./.env is
	// loaded if it exists.
	EnvFiles []string
	// Flags, when set, override values for every flag the user changed.
	Flags *pflag.FlagSet
}

func Load(opts Options) (*Config, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	}

	if opts.Flags != nil {
		for key, name := range flagNames {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, err
			}
		}
	}

	schema, err := node.ParseSchema(v.GetString(KeySchema))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		RelayURL:      v.GetString(KeyRelayURL),
		AuthToken:     v.GetString(KeyAuthToken),
		Schema:        schema,
		Tip:           v.GetUint64(KeyTip),
		Timeout:       v.GetDuration(KeyTimeout),
		SignatureLog:  v.GetString(KeySignatureLog),
		ListenAddress: v.GetString(KeyListenAddress),
		LogLevel:      v.GetString(KeyLogLevel),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.RelayURL == "" {
		return ErrMissingRelayURL
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Timeout)
	}
	if c.SignatureLog == "" {
		c.SignatureLog = siglog.DefaultPath
	}

	return nil
}

func (c *Config) RelayConfig() node.RelayConfig {
	return node.RelayConfig{
		Endpoint: c.RelayURL,
		Schema:   c.Schema,
		Tip:      c.Tip,
		Timeout:  c.Timeout,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyRelayURL, node.DefaultRelayURL)
	v.SetDefault(KeyAuthToken, "")
	v.SetDefault(KeySchema, string(node.SchemaBatch))
	v.SetDefault(KeyTip, node.DefaultTip)
	v.SetDefault(KeyTimeout, node.DefaultTimeout)
	v.SetDefault(KeySignatureLog, siglog.DefaultPath)
	v.SetDefault(KeyListenAddress, ":8080")
	v.SetDefault(KeyLogLevel, "*:INFO")
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		err := godotenv.Load(defaultEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", defaultEnvFile, err)
		}
		return nil
	}

	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}

	return nil
}
