// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncSignup()
	IncLogin()

	// Post management metrics
	IncPostCreated()
	IncPostUpdated()
	IncPostDeleted()

	// Asset lifecycle metrics
	IncAssetStored()
	IncAssetRemoved()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
