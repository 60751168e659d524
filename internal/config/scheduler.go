package config

// SchedulerConfig governs the cooperative task scheduler's fairness and
// concurrency knobs. None of these affect SLIP-level semantics (§5's
// FIFO-at-minimum guarantee always holds); they only tune the Go
// implementation driving it.
type SchedulerConfig struct {
	// ReadyQueueQuantum is loaded with the rest of the config; the
	// scheduler does not read it (Drain services ready tasks until the
	// ready queue is empty before it checks sleepers).
	ReadyQueueQuantum int `yaml:"ready_queue_quantum" json:"ready_queue_quantum"`

	// MaxConcurrentHostCalls bounds how many suspending host-bridge calls
	// (scheme I/O, template render) may be in flight at once; enforced
	// with a golang.org/x/sync/semaphore.Weighted.
	MaxConcurrentHostCalls int `yaml:"max_concurrent_host_calls" json:"max_concurrent_host_calls"`

	// DefaultSleepResolution is loaded with the rest of the config; the
	// scheduler does not read it (sleep(n) wakes via time.After on the
	// earliest sleeper's deadline).
	DefaultSleepResolution string `yaml:"default_sleep_resolution" json:"default_sleep_resolution"`
}
