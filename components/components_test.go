package components_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/fivebinaries/go-relay-submit/components"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitErrorUnwrapsKindAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(components.NewSubmitError(components.StageSubmitting, components.ErrTransport, cause))

	assert.ErrorIs(t, err, components.ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, components.ErrProtocol)

	var submitErr *components.SubmitError
	require.True(t, errors.As(err, &submitErr))
	assert.Equal(t, components.StageSubmitting, submitErr.Stage)
}

func TestSubmitErrorWithoutCause(t *testing.T) {
	err := components.NewSubmitError(components.StageEncoding, components.ErrEncoding, nil)

	assert.ErrorIs(t, err, components.ErrEncoding)
	assert.Equal(t, "encoding: "+components.ErrEncoding.Error(), err.Error())
}

func TestSubmitErrorMessageTruncatesRaw(t *testing.T) {
	err := components.NewSubmitError(components.StageSubmitting, components.ErrResponseParse, errors.New("invalid character '<'"))
	err.StatusCode = 502
	err.Raw = "<html>" + strings.Repeat("x", 1000) + "</html>"

	msg := err.Error()
	assert.Contains(t, msg, "(status 502)")
	assert.Contains(t, msg, "<html>")
	assert.NotContains(t, msg, "</html>")
	assert.Contains(t, msg, `..."`)
}

func TestReceiptLogged(t *testing.T) {
	assert.True(t, components.Receipt{}.Logged())

	receipt := components.Receipt{
		LogErr: components.NewSubmitError(components.StageLogging, components.ErrPersistence, errors.New("read-only file system")),
	}
	assert.False(t, receipt.Logged())
	assert.ErrorIs(t, receipt.LogErr, components.ErrPersistence)
}
