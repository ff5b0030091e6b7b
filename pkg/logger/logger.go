package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	Logger  *logrus.Logger
	service string
)

// InitLogger initializes the structured logger. logFormat comes from
// internal/config.Config.LogFormat ("json" or anything else for the
// colorized text formatter) rather than reading the environment directly,
// so this module has a single source of truth for configuration instead of
// config and logger each reading LOG_FORMAT independently. serviceName is
// baked in once here and stamped onto every entry WithService() returns
// afterward — this module runs a single service, unlike the multi-service
// monorepo this package is adapted from, so there is exactly one name to
// remember rather than one per call site.
func InitLogger(logLevel, logFormat, serviceName string) *logrus.Logger {
	log := logrus.New()
	service = serviceName

	if logLevel == "" {
		logLevel = "info"
	}
	if level, err := logrus.ParseLevel(strings.ToLower(logLevel)); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", logLevel).Warn("invalid log level, using info")
	}

	if strings.ToLower(logFormat) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}

	log.SetOutput(os.Stdout)
	Logger = log
	return log
}

// GetLogger returns the global logger, initializing it with defaults if
// InitLogger hasn't been called yet (e.g. in a test binary).
func GetLogger() *logrus.Logger {
	if Logger == nil {
		return InitLogger("info", "text", "cfbsim-server")
	}
	return Logger
}

// WithService returns a logger entry stamped with the service name given to
// InitLogger.
func WithService() *logrus.Entry {
	return GetLogger().WithField("service", service)
}

// WithBatchContext returns a logger entry scoped to one replay batch: batch
// id and the matchup being simulated. Used for the Info-level batch
// lifecycle events and Warn/Error-level abort logging internal/api/handlers
// emits.
func WithBatchContext(batchID, homeTeam, awayTeam string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"service":   service,
		"batch_id":  batchID,
		"home_team": homeTeam,
		"away_team": awayTeam,
	})
}
