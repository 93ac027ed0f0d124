// Package telemetry provides no-op telemetry functions.
//
// Nothing leaves the device without explicit user opt-in, so every function
// here does nothing by default. A real implementation can be swapped in via
// build tags or configuration once consent is recorded.
package telemetry

import "time"

// IsEnabled returns false always; telemetry is disabled until explicit opt-in.
func IsEnabled() bool {
	return false
}

// TrackError tracks an error. No-op without opt-in.
func TrackError(err error, context map[string]interface{}) {
}

// RecordCount records a counter increment. No-op without opt-in.
func RecordCount(name string, delta int, tags map[string]string) {
}

// RecordTiming records a timing duration. No-op without opt-in.
func RecordTiming(name string, duration time.Duration, tags map[string]string) {
}
