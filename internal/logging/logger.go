package logging

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/zzenonn/weatherpipe/internal/config"
)

// InitLogger sets the log level and format based on the provided configuration
func InitLogger(cfg *config.Config) {
	setLogLevel(strings.ToLower(cfg.LogLevel))
	setFormatter(strings.ToLower(cfg.LogFormat))
}

// InitFromEnv initializes logging from environment variables
func InitFromEnv() {
	setLogLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	setFormatter(strings.ToLower(os.Getenv("LOG_FORMAT")))
}

// setLogLevel sets the log level based on string input
func setLogLevel(logLevel string) {
	switch logLevel {
	case "trace":
		log.SetLevel(log.TraceLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn", "warning":
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.ErrorLevel)
	}
}

// setFormatter picks JSON for function runtimes, text with full timestamps otherwise
func setFormatter(format string) {
	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
}

func init() {
	InitFromEnv()
}
