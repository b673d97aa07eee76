// Package siglog appends accepted transaction signatures to a plain text,
// append-only log file, one "YYYY-MM-DD HH:MM:SS: <signature>" line per
// submission, and reads such files back.
//
// Appends to the same file are serialized in-process by a lock shared by
// every Log pointing at that path, so concurrent submitters never produce
// interleaved partial lines. Line order across writers is not guaranteed.
package siglog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("siglog")

const (
	DefaultPath = "signatures.log"
	// TimestampLayout renders local time with second precision.
	TimestampLayout = "2006-01-02 15:04:05"
	separator       = ": "
)

var (
	locksMu sync.Mutex
	locks   = make(map[string]*sync.Mutex)
)

func lockFor(path string) *sync.Mutex {
	key := filepath.Clean(path)
	if abs, err := filepath.Abs(key); err == nil {
		key = abs
	}

	locksMu.Lock()
	defer locksMu.Unlock()

	mu, ok := locks[key]
	if !ok {
		mu = &sync.Mutex{}
		locks[key] = mu
	}

	return mu
}

type Log struct {
	path string
	mu   *sync.Mutex
	now  func() time.Time
}

type Option func(*Log)

// WithClock replaces time.Now as the source of record timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

// New returns a Log writing to path, DefaultPath when empty. The file is
// created on the first append.
func New(path string, opts ...Option) *Log {
	if path == "" {
		path = DefaultPath
	}

	l := &Log{
		path: path,
		mu:   lockFor(path),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *Log) Path() string { return l.path }

// Append writes one record for signature. The file is opened in append
// mode and closed again before Append returns.
func (l *Log) Append(signature solana.Signature) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// stamped under the lock so records of one process are in time order
	line := FormatRecord(l.now(), signature.String())

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open signature log: %w", err)
	}

	// a single write keeps the record whole under O_APPEND
	if _, err = file.WriteString(line); err != nil {
		_ = file.Close()
		return fmt.Errorf("write signature log: %w", err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("close signature log: %w", err)
	}

	log.Trace("signature logged", "path", l.path, "signature", signature.String())

	return nil
}

// FormatRecord renders one log line, including the trailing newline.
func FormatRecord(ts time.Time, signature string) string {
	return ts.Local().Format(TimestampLayout) + separator + signature + "\n"
}
