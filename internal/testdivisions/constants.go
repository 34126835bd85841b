package testdivisions

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Job polling constants.
const (
	JobPollInterval = 50 * time.Millisecond
	JobPollTimeout  = 30 * time.Second
)

// Report constants.
const (
	PercentageMultiplier = 100
	directoryPermission  = 0750
	logFilePermission    = 0600
)
