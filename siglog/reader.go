package siglog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fivebinaries/go-relay-submit/tx"
	"github.com/gagliardetto/solana-go"
)

// ErrMalformedRecord signals a log line that is not "<timestamp>: <signature>"
var ErrMalformedRecord = errors.New("malformed signature log record")

type Record struct {
	Timestamp time.Time
	Signature solana.Signature
}

// ParseRecord parses one log line, without its newline. The timestamp is
// interpreted in the local time zone.
func ParseRecord(line string) (Record, error) {
	// the timestamp has no ": " of its own, so the first one separates the fields
	idx := strings.Index(line, separator)
	if idx < 0 {
		return Record{}, fmt.Errorf("%w: %q", ErrMalformedRecord, line)
	}

	ts, err := time.ParseInLocation(TimestampLayout, line[:idx], time.Local)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	sig, err := tx.ParseSignature(line[idx+len(separator):])
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	return Record{
		Timestamp: ts,
		Signature: sig,
	}, nil
}

// ReadRecords parses every non-empty line of the log at path.
func ReadRecords(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var (
		records []Record
		lineNo  int
		scanner = bufio.NewScanner(file)
	)

	for scanner.Scan() {
		lineNo++

		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		record, err := ParseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}

		records = append(records, record)
	}

	return records, scanner.Err()
}
