package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/uiafarm/agent/internal/constants"
	"github.com/uiafarm/agent/internal/devices"
	"github.com/uiafarm/agent/internal/service_registry"
	"github.com/uiafarm/agent/internal/services"
	"github.com/uiafarm/agent/internal/utils"
	"github.com/uiafarm/agent/pkg/adb"
	"github.com/uiafarm/agent/pkg/file"
	"github.com/uiafarm/agent/pkg/mqtt"
)

var errUsage = errors.New("missing arguments")

func main() {
	agentID := uuid.New().String()

	// Structured logs go to stderr; stdout carries only the scan table.
	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("agent_id", agentID).
		Logger()

	fileClient := file.NewFileService()

	config, err := resolveConfig(os.Args, fileClient, logger)
	if err != nil {
		printUsage(os.Args[0])
		os.Exit(1)
	}

	if config.Agent.LogLevel != "" {
		level, err := zerolog.ParseLevel(config.Agent.LogLevel)
		if err != nil {
			logger.Warn().Str("log_level", config.Agent.LogLevel).Msg("Unknown log level, keeping info")
		} else {
			logger = logger.Level(level)
		}
	}

	adbClient := adb.NewClient(config.Supervisor.ADBPath, logger)
	adb.CheckVersion(context.Background(), adbClient, logger)

	table := devices.NewTable(config.Supervisor.DeviceList)
	logger.Info().Int("devices", table.Len()).Msg("Device table built")
	stats := devices.NewLaunchStats()

	registry := service_registry.NewServiceRegistry(logger)

	supervisor := services.NewSupervisorService(
		table,
		adbClient,
		time.Duration(config.Supervisor.IntervalMS)*time.Millisecond,
		config.Supervisor.MaxWorkers,
		stats,
		os.Stdout,
		logger,
	)
	registry.RegisterService("supervisor", supervisor)

	var mqttClient *mqtt.MqttService
	if config.Status.Enabled {
		mqttClient = mqtt.NewMqttService(fileClient)

		// Unique client ID per run so broker sessions never collide.
		clientID := config.Status.ClientID + "-" + agentID
		if err := mqttClient.Initialize(config.Status.Broker, clientID, config.Status.CACertificate); err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
		}

		interval := config.Status.Interval
		if interval <= 0 {
			interval = constants.DefaultStatusInterval
		}
		registry.RegisterService("status", services.NewStatusService(
			config.Status.Topic,
			time.Duration(interval)*time.Second,
			agentID,
			config.Status.QOS,
			table,
			stats,
			mqttClient,
			logger,
		))
	}

	if config.Metrics.Enabled {
		interval := config.Metrics.Interval
		if interval <= 0 {
			interval = constants.DefaultMetricsInterval
		}
		registry.RegisterService("metrics", services.NewMetricsService(
			time.Duration(interval)*time.Second,
			logger,
		))
	}

	if err := registry.StartServices(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start services")
	}
	logger.Info().Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	if err := registry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Shutdown finished with errors")
	}
	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}
}

// resolveConfig builds the agent configuration either from a YAML file
// (-config <path>) or from the positional form:
//
//	agent <adb-path> <interval-ms> <device-list>
//
// A malformed interval is coerced to 0 with a warning, which makes the
// supervisor scan without any delay. That mirrors how the farm has always
// treated a bad interval argument.
func resolveConfig(args []string, fileClient file.FileOperations, logger zerolog.Logger) (*utils.Config, error) {
	if len(args) == 3 && (args[1] == "-config" || args[1] == "--config") {
		return utils.LoadConfig(args[2], fileClient)
	}

	if len(args) < 4 {
		return nil, errUsage
	}

	interval, err := strconv.Atoi(args[2])
	if err != nil {
		logger.Warn().Str("value", args[2]).Msg("Invalid scan interval, defaulting to 0ms")
		interval = 0
	}

	config := &utils.Config{}
	config.Supervisor.ADBPath = args[1]
	config.Supervisor.IntervalMS = interval
	config.Supervisor.DeviceList = args[3]
	return config, nil
}

func printUsage(program string) {
	program = filepath.Base(program)
	fmt.Fprintf(os.Stderr, "Usage: %s adbpath sleeptime ADBDEVICE/ADBDEVICE1/ADBDEVICE2 ...\n", program)
	fmt.Fprintf(os.Stderr, "Example: %s adb.exe 5000 127.0.0.1:5555/127.0.0.1:5570/127.0.0.1:5585/127.0.0.1:5590/127.0.0.1:5595\n", program)
	fmt.Fprintf(os.Stderr, "Example: %s -config agent.yaml\n", program)
}
