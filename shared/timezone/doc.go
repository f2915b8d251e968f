// Package timezone owns the application location and the clocks scheduling code reads.
//
// Instants are stored and compared in UTC. The application location, taken from
// APP_TIMEZONE, is only used to render instants in responses and to decide which
// weekday a recurring window falls on. An empty or unknown zone name falls back to UTC.
//
// Services never call time.Now directly. They take a Clock so tests can drive lead time
// cutoffs and completion sweeps with a ManualClock.
package timezone
