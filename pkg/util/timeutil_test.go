package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	for _, value := range []string{"2024-03", " 2024-03-17 ", "2024-03-31T23:00:00Z", "2024-03-05 10:00:00"} {
		got, ok := ParseMonth(value)
		require.True(t, ok, value)
		require.Equal(t, want, got, value)
	}

	_, ok := ParseMonth("March 2024")
	require.False(t, ok)
}

func TestNowUTC(t *testing.T) {
	require.Equal(t, time.UTC, NowUTC().Location())
}
