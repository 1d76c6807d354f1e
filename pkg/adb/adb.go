package adb

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/uiafarm/agent/internal/constants"
)

// Runner is the capability the agent needs from the Android debug bridge.
// Workers call Connect and RunInstrumentation; Version backs the startup
// version gate.
type Runner interface {
	Connect(ctx context.Context, device string) error
	RunInstrumentation(ctx context.Context, device string) error
	Version(ctx context.Context) (*semver.Version, error)
}

// Client invokes the bridge tool binary at the configured path.
type Client struct {
	path   string
	logger zerolog.Logger
}

// NewClient creates a Client for the adb binary at path. The path is not
// checked here; the first invocation surfaces a missing or broken binary.
func NewClient(path string, logger zerolog.Logger) *Client {
	return &Client{
		path:   path,
		logger: logger,
	}
}

// run executes one adb invocation and blocks until it exits.
func (c *Client) run(ctx context.Context, args ...string) error {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, c.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug().Strs("args", args).Msg("Running adb command")
	if err := cmd.Run(); err != nil {
		c.logger.Debug().Err(err).Strs("args", args).
			Str("stderr", strings.TrimSpace(stderr.String())).
			Msg("adb command exited with error")
		return fmt.Errorf("adb %s: %w", strings.Join(args, " "), err)
	}
	return nil
}

// Connect asks adb to attach the device, typically over TCP for host:port
// addresses.
func (c *Client) Connect(ctx context.Context, device string) error {
	return c.run(ctx, "connect", device)
}

// RunInstrumentation launches the uiautomator test server on the device and
// blocks until the instrumentation exits. This is the long-running call: the
// server keeps the instrumentation alive until it is stopped on-device or
// the connection drops.
func (c *Client) RunInstrumentation(ctx context.Context, device string) error {
	return c.run(ctx,
		"-s", device,
		"shell", "am", "instrument", "-w", "-r",
		"-e", "debug", "false",
		"-e", "class", constants.InstrumentationStubClass,
		constants.InstrumentationComponent,
	)
}

// Version reports the installed bridge tool release, parsed from
// `adb version` output.
func (c *Client) Version(ctx context.Context) (*semver.Version, error) {
	var stdout bytes.Buffer

	cmd := exec.CommandContext(ctx, c.path, "version")
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("running %s version: %w", c.path, err)
	}

	return parseVersion(stdout.String())
}

// parseVersion extracts the release number from output such as
// "Android Debug Bridge version 1.0.41".
func parseVersion(out string) (*semver.Version, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Android Debug Bridge version") {
			continue
		}

		fields := strings.Fields(line)
		raw := fields[len(fields)-1]
		version, err := semver.NewVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing adb version %q: %w", raw, err)
		}
		return version, nil
	}
	return nil, fmt.Errorf("no version line in adb output")
}

// CheckVersion warns when the installed bridge tool predates the minimum
// supported release. The agent still runs either way; older adb builds
// mostly work, they just lack reconnect fixes the farm relies on.
func CheckVersion(ctx context.Context, runner Runner, logger zerolog.Logger) {
	version, err := runner.Version(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Could not determine adb version")
		return
	}

	minimum := semver.MustParse(constants.MinimumADBVersion)
	if version.LessThan(minimum) {
		logger.Warn().
			Str("installed", version.String()).
			Str("minimum", minimum.String()).
			Msg("adb is older than the minimum supported version")
		return
	}

	logger.Info().Str("version", version.String()).Msg("adb version check passed")
}
