package utils

import (
	"github.com/uiafarm/agent/pkg/file"
)

// Config represents the structure of the agent configuration file. The
// positional CLI form fills only the supervisor section; the YAML form can
// also enable the optional reporting services.
type Config struct {
	Agent struct {
		LogLevel string `yaml:"log_level"` // zerolog level name, defaults to info
	} `yaml:"agent"`

	Supervisor struct {
		ADBPath    string `yaml:"adb_path"`    // Path or command name of the bridge tool
		IntervalMS int    `yaml:"interval_ms"` // Sleep between scans, in milliseconds
		DeviceList string `yaml:"device_list"` // '/'-joined adb addresses
		MaxWorkers int    `yaml:"max_workers"` // Bound on concurrent workers, 0 = unbounded
	} `yaml:"supervisor"`

	Status struct {
		Enabled       bool   `yaml:"enabled"`        // Enable/disable the fleet status publisher
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID prefix
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate, optional
		Topic         string `yaml:"topic"`          // MQTT topic for fleet snapshots
		QOS           int    `yaml:"qos"`            // MQTT QoS level for snapshots
		Interval      int    `yaml:"interval"`       // Interval between snapshots (in seconds)
	} `yaml:"status"`

	Metrics struct {
		Enabled  bool `yaml:"enabled"`  // Enable/disable host metrics reporting
		Interval int  `yaml:"interval"` // Interval between reports (in seconds)
	} `yaml:"metrics"`
}

// LoadConfig loads the YAML configuration from the specified file.
// It returns a pointer to the Config struct and an error if loading fails.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
