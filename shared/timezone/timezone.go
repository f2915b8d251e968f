package timezone

import (
	"sync"
	"time"

	"visit/config"

	"github.com/rs/zerolog/log"
)

var (
	locationOnce sync.Once
	appLocation  *time.Location
)

// Load resolves an IANA zone name, falling back to UTC when name is empty or unknown.
func Load(name string) *time.Location {
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC")

		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Unknown timezone, using UTC")

		return time.UTC
	}

	return loc
}

// GetLocation returns the application location, loading it from config on first use.
func GetLocation() *time.Location {
	locationOnce.Do(func() {
		appLocation = Load(config.Get().App.Timezone)

		log.Info().Str("timezone", appLocation.String()).Msg("Application timezone initialized")
	})

	return appLocation
}

func Now() time.Time {
	return time.Now().In(GetLocation())
}

// Format renders t in the application location.
func Format(t time.Time, layout string) string {
	return t.In(GetLocation()).Format(layout)
}

// Clock supplies the current instant. Scheduling code takes a Clock instead of calling Now
// directly so cutoffs and completions can be evaluated at a chosen instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return Now()
}

// NewClock returns the wall clock in the application location.
func NewClock() Clock {
	return systemClock{}
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.now
}

func (c *ManualClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}
