package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/uiafarm/agent/internal/devices"
	"github.com/uiafarm/agent/internal/models"
	"github.com/uiafarm/agent/pkg/mqtt"
)

// StatusService periodically publishes a JSON fleet snapshot to an MQTT
// topic: one row per device record with its idle flag and worker launch
// counters. It only reads the table; the supervisor and its workers own the
// flags.
type StatusService struct {
	PubTopic  string
	Interval  time.Duration
	AgentID   string
	QOS       int
	Table     *devices.Table
	Stats     *devices.LaunchStats
	Publisher mqtt.Publisher
	Logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStatusService initializes a new StatusService.
func NewStatusService(pubTopic string, interval time.Duration, agentID string, qos int,
	table *devices.Table, stats *devices.LaunchStats, publisher mqtt.Publisher, logger zerolog.Logger) *StatusService {

	return &StatusService{
		PubTopic:  pubTopic,
		Interval:  interval,
		AgentID:   agentID,
		QOS:       qos,
		Table:     table,
		Stats:     stats,
		Publisher: publisher,
		Logger:    logger,
	}
}

// Start launches the snapshot loop in a separate goroutine.
func (s *StatusService) Start() error {
	if s.ctx != nil {
		s.Logger.Warn().Msg("StatusService is already running")
		return errors.New("status service is already running")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runSnapshotLoop()
	}()

	s.Logger.Info().Str("topic", s.PubTopic).Msg("StatusService started successfully")
	return nil
}

// Stop gracefully stops the status service.
func (s *StatusService) Stop() error {
	if s.ctx == nil {
		s.Logger.Warn().Msg("StatusService is not running")
		return errors.New("status service is not running")
	}

	s.cancel()
	s.wg.Wait()

	s.ctx = nil
	s.cancel = nil

	s.Logger.Info().Msg("StatusService stopped successfully")
	return nil
}

// runSnapshotLoop publishes one snapshot per interval until stopped.
func (s *StatusService) runSnapshotLoop() {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			snapshot := s.Snapshot()
			payload, err := json.Marshal(snapshot)
			if err != nil {
				s.Logger.Error().Err(err).Msg("Failed to marshal fleet snapshot")
				continue
			}

			if err := s.Publisher.Publish(s.PubTopic, byte(s.QOS), false, payload); err != nil {
				s.Logger.Error().Err(err).Str("topic", s.PubTopic).Msg("Failed to publish fleet snapshot")
				continue
			}

			s.Logger.Debug().Int("devices", len(snapshot.Devices)).Msg("Fleet snapshot published")

		case <-s.ctx.Done():
			s.Logger.Info().Msg("Stopping snapshot loop")
			return
		}
	}
}

// Snapshot assembles the current fleet state in table order.
func (s *StatusService) Snapshot() models.FleetSnapshot {
	snapshot := models.FleetSnapshot{
		AgentID:   s.AgentID,
		Timestamp: time.Now(),
		Devices:   make([]models.DeviceStatus, 0, s.Table.Len()),
	}

	for _, device := range s.Table.Devices() {
		row := models.DeviceStatus{
			Name: device.Name,
			Idle: device.Idle(),
		}
		if info, ok := s.Stats.Get(device.Name); ok {
			row.Launches = info.Count
			row.LastLaunch = info.LastLaunch
		}
		snapshot.Devices = append(snapshot.Devices, row)
	}

	return snapshot
}
