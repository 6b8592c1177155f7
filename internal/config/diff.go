package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked; listen address and
// ingest limits need a restart.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// ExtractorChanged is set when any threshold differs.
	ExtractorChanged bool

	// LaunchChanged is set when the suffix or the target URL differs.
	LaunchChanged bool

	DedupeChanged bool
}

// Any reports whether at least one hot-reloadable field changed.
func (d ConfigDiff) Any() bool {
	return d.LogLevelChanged || d.ExtractorChanged || d.LaunchChanged || d.DedupeChanged
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	d.ExtractorChanged = old.Extractor != new.Extractor
	d.LaunchChanged = old.Launch != new.Launch
	d.DedupeChanged = old.Collection.DedupeThreshold != new.Collection.DedupeThreshold

	return d
}
