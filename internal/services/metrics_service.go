package services

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/uiafarm/agent/internal/models"
)

// MetricsService logs host resource usage on an interval. The goroutine
// count doubles as a rough gauge of in-flight device workers, which is the
// number an operator actually watches on a flapping farm.
type MetricsService struct {
	Interval time.Duration
	Logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMetricsService initializes a new MetricsService.
func NewMetricsService(interval time.Duration, logger zerolog.Logger) *MetricsService {
	return &MetricsService{
		Interval: interval,
		Logger:   logger,
	}
}

// Start launches the metrics loop in a separate goroutine.
func (m *MetricsService) Start() error {
	if m.ctx != nil {
		m.Logger.Warn().Msg("MetricsService is already running")
		return errors.New("metrics service is already running")
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.runMetricsLoop()
	}()

	m.Logger.Info().Dur("interval", m.Interval).Msg("MetricsService started successfully")
	return nil
}

// Stop gracefully stops the metrics service.
func (m *MetricsService) Stop() error {
	if m.ctx == nil {
		m.Logger.Warn().Msg("MetricsService is not running")
		return errors.New("metrics service is not running")
	}

	m.cancel()
	m.wg.Wait()

	m.ctx = nil
	m.cancel = nil

	m.Logger.Info().Msg("MetricsService stopped successfully")
	return nil
}

func (m *MetricsService) runMetricsLoop() {
	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics := m.Collect()
			m.Logger.Info().
				Float64("cpu_percent", metrics.CPUPercent).
				Float64("memory_percent", metrics.MemoryPercent).
				Int("goroutines", metrics.Goroutines).
				Msg("Host metrics")

		case <-m.ctx.Done():
			return
		}
	}
}

// Collect gathers a point-in-time host metrics sample. Collection failures
// leave the affected field at zero rather than failing the sample.
func (m *MetricsService) Collect() models.HostMetrics {
	metrics := models.HostMetrics{
		Timestamp:  time.Now(),
		Goroutines: runtime.NumGoroutine(),
	}

	if percentages, err := cpu.Percent(0, false); err != nil {
		m.Logger.Warn().Err(err).Msg("Failed to collect CPU usage")
	} else if len(percentages) > 0 {
		metrics.CPUPercent = percentages[0]
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		m.Logger.Warn().Err(err).Msg("Failed to collect memory usage")
	} else {
		metrics.MemoryPercent = vm.UsedPercent
	}

	return metrics
}
