package constants

// Instrumentation target installed on each device by uiautomator2.
const (
	// InstrumentationStubClass is the test class hosting the uiautomator RPC stub.
	InstrumentationStubClass = "com.github.uiautomator.stub.Stub"
	// InstrumentationComponent is the <package>/<runner> pair passed to am instrument.
	InstrumentationComponent = "com.github.uiautomator.test/androidx.test.runner.AndroidJUnitRunner"
)

// MinimumADBVersion is the oldest bridge tool release the agent is known to
// work with (first release with stable `adb connect` over TCP for the farm).
const MinimumADBVersion = "1.0.39"

// Defaults for the optional reporting services, in seconds.
const (
	DefaultStatusInterval  = 30
	DefaultMetricsInterval = 60
)
