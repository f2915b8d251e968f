package logger

import (
	"io"
	"os"
	"time"

	"visit/config"
	"visit/shared/constant"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	log.Logger = log.Output(output)
	log.Trace().Msg("Zerolog initialized.")
}

// Configure applies the configured level. Outside development the console writer is replaced
// by JSON lines on w tagged with the service name.
func Configure(config *config.Config, w io.Writer) {
	SetLogLevel(config)

	if config.Server.Env == constant.ServerEnvDevelopment {
		return
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = zerolog.New(w).With().Timestamp().Str("service", config.App.Name).Logger()
}

func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}

// SetLogLevel parses SERVER_LOG_LEVEL. An empty level means info and an unknown one trace.
func SetLogLevel(config *config.Config) {
	if config.Server.LogLevel == constant.Empty {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)

		return
	}

	level, err := zerolog.ParseLevel(config.Server.LogLevel)
	if err != nil {
		level = zerolog.TraceLevel
		log.Trace().Str("loglevel", level.String()).Msg("Unknown log level configured, using default.")
	} else {
		log.Trace().Str("loglevel", level.String()).Msg("Desired log level detected.")
	}

	zerolog.SetGlobalLevel(level)
}
