package logging

import (
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects CLI identity, backend endpoints, configuration,
// and feature flags, then emits a single structured zerolog event when a
// command starts. One event answers the first troubleshooting question:
// which build talked to which services with which settings.
type StartupLogger struct {
	name       string
	version    string
	commitHash string
	buildTime  string

	services map[string]string
	features map[string]bool
	config   map[string]string
}

// NewStartupLogger creates a StartupLogger for the given command name
// (e.g. "run", "health").
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:     name,
		services: make(map[string]string),
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// Version sets the release version baked into the binary at build time (DDR-015).
func (s *StartupLogger) Version(v string) *StartupLogger {
	s.version = v
	return s
}

// CommitHash sets the git commit hash baked into the binary at build time (DDR-015).
func (s *StartupLogger) CommitHash(hash string) *StartupLogger {
	s.commitHash = hash
	return s
}

// BuildTime sets the UTC build timestamp baked into the binary at build time (DDR-015).
func (s *StartupLogger) BuildTime(t string) *StartupLogger {
	s.buildTime = t
	return s
}

// Service registers a backend service endpoint this command will call.
func (s *StartupLogger) Service(label, url string) *StartupLogger {
	s.services[label] = url
	return s
}

// Feature registers a boolean feature flag (e.g. "filePicker", "bundle").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration key-value pair.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// EnvOrDefault returns the value of the named environment variable, or
// defaultVal if the variable is empty or unset.
func EnvOrDefault(envVar, defaultVal string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultVal
}

// Log emits a single structured INFO log event with all collected information.
func (s *StartupLogger) Log() {
	evt := log.Info()

	cliDict := zerolog.Dict().
		Str("name", s.name).
		Str("goVersion", runtime.Version()).
		Str("os", runtime.GOOS).
		Str("arch", runtime.GOARCH)
	if s.version != "" {
		cliDict = cliDict.Str("version", s.version)
	}
	if s.commitHash != "" {
		cliDict = cliDict.Str("commitHash", s.commitHash)
	}
	if s.buildTime != "" {
		cliDict = cliDict.Str("buildTime", s.buildTime)
	}
	evt = evt.Dict("cli", cliDict)

	if len(s.services) > 0 {
		evt = evt.Dict("services", dictFromMap(s.services))
	}
	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}
	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}

	evt.Msg("Command start")
}

// dictFromMap converts a map[string]string into a zerolog.Event (Dict).
func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
