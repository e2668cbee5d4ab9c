package nower

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNowReturnsRecentUTCTime(t *testing.T) {
	now := New().Now()
	require.WithinDuration(t, time.Now(), now, 50*time.Millisecond)
	require.Equal(t, time.UTC, now.Location())
}

func TestFixedNowerIsStable(t *testing.T) {
	at := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	n := NewFixed(at)
	require.Equal(t, at, n.Now())
	require.Equal(t, at, n.Now())
}
