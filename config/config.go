package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"`
		LogLevel string `envconfig:"LOG_LEVEL"`
		Port     string `envconfig:"PORT"`
		Host     string `envconfig:"HOST"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME"`
		Timezone string `envconfig:"TIMEZONE"`
		CORS     struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS"`
		} `envconfig:"RATE_LIMITER"`
		APIKey string `envconfig:"API_KEY"`
	} `envconfig:"APP"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
			DialTimeoutMillis int `envconfig:"DIAL_TIMEOUT_MILLIS" default:"3000"`
			PoolSize          int `envconfig:"POOL_SIZE"           default:"20"`
			PingRetry         int `envconfig:"PING_RETRY"          default:"3"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL"`
	} `envconfig:"CACHE"`

	JWT struct {
		AccessSecret    string `envconfig:"ACCESS_SECRET"`
		Issuer          string `envconfig:"ISSUER"`
		AccessExpireMin int    `envconfig:"ACCESS_EXPIRE_MIN"`
	} `envconfig:"JWT"`

	DB struct {
		Postgres struct {
			MaxRetry       int    `envconfig:"MAX_RETRY"`
			RetryWaitTime  int    `envconfig:"RETRY_WAIT_TIME"`
			MigrationTable string `envconfig:"MIGRATION_TABLE"`
			AutoMigrate    bool   `envconfig:"AUTO_MIGRATE"`
			Prefix         string `envconfig:"PREFIX"`
			Read           struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Username string `envconfig:"USER"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME"`
				Timezone string `envconfig:"TIMEZONE"`
				SSLMode  string `envconfig:"SSL_MODE"`
			} `envconfig:"READ"`
			Write struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Username string `envconfig:"USER"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME"`
				Timezone string `envconfig:"TIMEZONE"`
				SSLMode  string `envconfig:"SSL_MODE"`
			} `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Brokers       []string `envconfig:"BROKERS"`
		ConsumerGroup string   `envconfig:"CONSUMER_GROUP"`
		Topic         string   `envconfig:"TOPIC"`
		SASL          struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
	} `envconfig:"KAFKA"`

	Scheduling struct {
		MinSlotMinutes          int    `envconfig:"MIN_SLOT_MINUTES"          default:"15"`
		CancellationCutoffHours int    `envconfig:"CANCELLATION_CUTOFF_HOURS" default:"24"`
		CompletionSweepSeconds  int    `envconfig:"COMPLETION_SWEEP_SECONDS"  default:"300"`
		MaxRangeDays            int    `envconfig:"MAX_RANGE_DAYS"            default:"90"`
		Lock                    struct {
			Driver     string `envconfig:"DRIVER"      default:"redis"`
			WaitMillis int    `envconfig:"WAIT_MILLIS" default:"2000"`
			TTLMillis  int    `envconfig:"TTL_MILLIS"  default:"10000"`
		} `envconfig:"LOCK"`
	} `envconfig:"SCHEDULING"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
	}
}

var (
	ErrInvalidScheduling = errors.New("invalid scheduling configuration")

	lockDrivers = map[string]bool{"redis": true, "local": true}
)

// Validate rejects scheduling settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error

	scheduling := c.Scheduling

	if scheduling.MinSlotMinutes <= 0 {
		errs = append(errs, fmt.Errorf("%w: SCHEDULING_MIN_SLOT_MINUTES must be positive", ErrInvalidScheduling))
	}

	if scheduling.CancellationCutoffHours < 0 {
		errs = append(errs, fmt.Errorf("%w: SCHEDULING_CANCELLATION_CUTOFF_HOURS must not be negative", ErrInvalidScheduling))
	}

	if scheduling.CompletionSweepSeconds <= 0 {
		errs = append(errs, fmt.Errorf("%w: SCHEDULING_COMPLETION_SWEEP_SECONDS must be positive", ErrInvalidScheduling))
	}

	if scheduling.MaxRangeDays <= 0 {
		errs = append(errs, fmt.Errorf("%w: SCHEDULING_MAX_RANGE_DAYS must be positive", ErrInvalidScheduling))
	}

	if !lockDrivers[scheduling.Lock.Driver] {
		errs = append(errs, fmt.Errorf("%w: unknown lock driver %q", ErrInvalidScheduling, scheduling.Lock.Driver))
	}

	if scheduling.Lock.WaitMillis <= 0 || scheduling.Lock.TTLMillis <= 0 {
		errs = append(errs, fmt.Errorf("%w: lock wait and ttl must be positive", ErrInvalidScheduling))
	}

	return errors.Join(errs...)
}

var (
	conf    Config
	once    sync.Once
	initErr error
)

// Init loads .env when present, then the process environment. Missing .env is not an error.
func Init() error {
	once.Do(func() {
		if loadErr := godotenv.Load(".env"); loadErr != nil {
			log.Debug().Err(loadErr).Msg("No .env file loaded, using process environment")
		}

		if err := envconfig.Process("", &conf); err != nil {
			initErr = fmt.Errorf("processing environment: %w", err)

			return
		}

		initErr = conf.Validate()
	})

	return initErr
}

func Get() *Config {
	if err := Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize configuration")
	}

	return &conf
}
