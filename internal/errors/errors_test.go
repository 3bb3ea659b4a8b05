package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizeExceededMessage(t *testing.T) {
	err := NewSizeExceeded(12_000_000, 10*1024*1024)
	require.Contains(t, err.Message, "12.0 MB")
	require.Contains(t, err.Message, "10 MB")
	require.Equal(t, 413, err.Status)
	require.Equal(t, 12_000_000, err.Details["measured_bytes"])
}

func TestSelectorNotFoundDetails(t *testing.T) {
	err := NewSelectorNotFound("#missing")
	require.Equal(t, ErrSelectorNotFound, err.Code)
	require.Contains(t, err.Message, "#missing")
	require.Equal(t, "#missing", err.Details["selector"])
}

func TestErrorString(t *testing.T) {
	err := NewConfigInvalid("duration must be finite")
	require.Equal(t, "CONFIG_INVALID: duration must be finite", err.Error())
}

func TestIs(t *testing.T) {
	err := NewDecodeFailed(3, fmt.Errorf("truncated PNG"))
	require.True(t, Is(err, ErrDecodeFailed))
	require.False(t, Is(err, ErrSizeExceeded))
	require.False(t, Is(fmt.Errorf("plain"), ErrDecodeFailed))
}

func TestNewInternalNil(t *testing.T) {
	err := NewInternal(nil)
	require.Equal(t, "internal error", err.Message)
	require.Equal(t, 500, err.Status)
}
