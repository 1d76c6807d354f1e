package services

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMetricsService_StartStop tests lifecycle misuse errors.
func TestMetricsService_StartStop(t *testing.T) {
	m := NewMetricsService(time.Hour, zerolog.Nop())

	err := m.Stop()
	assert.Error(t, err)
	assert.Equal(t, "metrics service is not running", err.Error())

	require.NoError(t, m.Start())

	err = m.Start()
	assert.Error(t, err)
	assert.Equal(t, "metrics service is already running", err.Error())

	require.NoError(t, m.Stop())
}

// TestMetricsService_Collect tests that a sample always carries a goroutine
// count and a timestamp.
func TestMetricsService_Collect(t *testing.T) {
	m := NewMetricsService(time.Hour, zerolog.Nop())

	before := time.Now()
	metrics := m.Collect()

	assert.Greater(t, metrics.Goroutines, 0)
	assert.False(t, metrics.Timestamp.Before(before))
	assert.GreaterOrEqual(t, metrics.MemoryPercent, 0.0)
}
