package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/uiafarm/agent/internal/devices"
	"github.com/uiafarm/agent/internal/utils"
	"github.com/uiafarm/agent/pkg/adb"
)

// SupervisorService owns the scan loop. Each scan walks the device table in
// order, writes one "<name>\t<idle>" line per record to out, claims every
// idle device and launches a worker for it, then sleeps the configured
// interval.
//
// The claim is a compare-and-swap on the device flag, so concurrent scans
// cannot start two workers for one record. A worker holds the flag for the
// whole connect + instrumentation run and releases it unconditionally on the
// way out, which is what makes a device eligible for the next attempt.
type SupervisorService struct {
	table    *devices.Table
	runner   adb.Runner
	interval time.Duration
	stats    *devices.LaunchStats
	out      io.Writer
	logger   zerolog.Logger

	// maxWorkers > 0 routes workers through a bounded pool; 0 keeps the
	// historical one-goroutine-per-claim behavior.
	maxWorkers int
	pool       *utils.WorkerPool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSupervisorService initializes a new SupervisorService. out receives the
// per-scan device table dump; in production this is stdout.
func NewSupervisorService(table *devices.Table, runner adb.Runner, interval time.Duration,
	maxWorkers int, stats *devices.LaunchStats, out io.Writer, logger zerolog.Logger) *SupervisorService {

	return &SupervisorService{
		table:      table,
		runner:     runner,
		interval:   interval,
		stats:      stats,
		out:        out,
		logger:     logger,
		maxWorkers: maxWorkers,
	}
}

// Start launches the scan loop in a separate goroutine.
func (s *SupervisorService) Start() error {
	if s.ctx != nil {
		s.logger.Warn().Msg("SupervisorService is already running")
		return errors.New("supervisor service is already running")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	if s.maxWorkers > 0 {
		s.pool = utils.NewWorkerPool(s.maxWorkers)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runScanLoop()
	}()

	s.logger.Info().
		Int("devices", s.table.Len()).
		Dur("interval", s.interval).
		Int("max_workers", s.maxWorkers).
		Msg("SupervisorService started successfully")
	return nil
}

// Stop cancels in-flight bridge commands and waits for the scan loop and all
// workers to return.
func (s *SupervisorService) Stop() error {
	if s.ctx == nil {
		s.logger.Warn().Msg("SupervisorService is not running")
		return errors.New("supervisor service is not running")
	}

	s.cancel()
	s.wg.Wait()
	if s.pool != nil {
		s.pool.Shutdown()
		s.pool = nil
	}

	s.ctx = nil
	s.cancel = nil

	s.logger.Info().Msg("SupervisorService stopped successfully")
	return nil
}

// runScanLoop scans, sleeps, repeats. An interval of zero busy-polls; that
// matches what the operator asked for on the command line.
func (s *SupervisorService) runScanLoop() {
	ctx := s.ctx
	for {
		s.scan(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.interval):
		}
	}
}

// scan walks the table once in parse order.
func (s *SupervisorService) scan(ctx context.Context) {
	for _, device := range s.table.Devices() {
		idle := device.Idle()
		fmt.Fprintf(s.out, "%s\t%t\n", device.Name, idle)

		if !idle {
			continue
		}
		if !device.TryClaim() {
			// Lost the claim to a worker still winding down; next scan
			// sees the fresh flag.
			continue
		}
		s.launch(ctx, device)
	}
}

// launch hands a claimed device to a worker. The claim travels with the
// task: whoever runs it is responsible for the eventual Release.
func (s *SupervisorService) launch(ctx context.Context, device *devices.Device) {
	s.stats.Record(device.Name, time.Now())

	if s.pool != nil {
		s.pool.Submit(func() {
			s.runWorker(ctx, device)
		})
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runWorker(ctx, device)
	}()
}

// runWorker brings one device online and starts its test server. Bridge tool
// exit codes are logged and otherwise ignored; the device goes back to idle
// no matter what happened, so the next scan can retry it.
func (s *SupervisorService) runWorker(ctx context.Context, device *devices.Device) {
	defer device.Release()

	logger := s.logger.With().Str("device", device.Name).Logger()

	logger.Info().Msg("Connecting device")
	if err := s.runner.Connect(ctx, device.Name); err != nil {
		logger.Warn().Err(err).Msg("adb connect failed")
	}

	logger.Info().Msg("Starting instrumentation test server")
	if err := s.runner.RunInstrumentation(ctx, device.Name); err != nil {
		logger.Warn().Err(err).Msg("Instrumentation run ended with error")
	}

	logger.Debug().Msg("Worker finished, device idle again")
}
