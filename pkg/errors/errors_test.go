package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrap_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodeNetworkFailure, "chat completion request failed", cause)

	require.Equal(t, "chat completion request failed: connection reset", err.Error())
	require.ErrorIs(t, err, cause)
	require.Equal(t, "stale", Wrap(CodeStaleView, "stale", nil).Error())
}

func TestIsCodeAndCodeOf(t *testing.T) {
	err := fmt.Errorf("dashboard: %w", Wrap(CodeStaleView, "superseded", nil))

	require.True(t, IsCode(err, CodeStaleView))
	require.False(t, IsCode(err, CodeQueryFailed))
	require.Equal(t, CodeStaleView, CodeOf(err))
	require.Empty(t, CodeOf(errors.New("plain")))
	require.False(t, IsCode(nil, CodeStaleView))
}
