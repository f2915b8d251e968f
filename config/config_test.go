package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visit/config"
)

func validConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Scheduling.MinSlotMinutes = 15
	cfg.Scheduling.CancellationCutoffHours = 24
	cfg.Scheduling.CompletionSweepSeconds = 300
	cfg.Scheduling.MaxRangeDays = 90
	cfg.Scheduling.Lock.Driver = "redis"
	cfg.Scheduling.Lock.WaitMillis = 2000
	cfg.Scheduling.Lock.TTLMillis = 10000

	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{name: "local lock", mutate: func(cfg *config.Config) { cfg.Scheduling.Lock.Driver = "local" }},
		{name: "zero cutoff", mutate: func(cfg *config.Config) { cfg.Scheduling.CancellationCutoffHours = 0 }},
		{name: "zero slot", mutate: func(cfg *config.Config) { cfg.Scheduling.MinSlotMinutes = 0 }, wantErr: true},
		{name: "negative cutoff", mutate: func(cfg *config.Config) { cfg.Scheduling.CancellationCutoffHours = -1 }, wantErr: true},
		{name: "zero sweep", mutate: func(cfg *config.Config) { cfg.Scheduling.CompletionSweepSeconds = 0 }, wantErr: true},
		{name: "zero max range", mutate: func(cfg *config.Config) { cfg.Scheduling.MaxRangeDays = 0 }, wantErr: true},
		{name: "unknown driver", mutate: func(cfg *config.Config) { cfg.Scheduling.Lock.Driver = "etcd" }, wantErr: true},
		{name: "zero lock ttl", mutate: func(cfg *config.Config) { cfg.Scheduling.Lock.TTLMillis = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, config.ErrInvalidScheduling)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Scheduling.MinSlotMinutes = 0
	cfg.Scheduling.Lock.Driver = "etcd"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MIN_SLOT_MINUTES")
	assert.Contains(t, err.Error(), "etcd")
}

func TestGet_AppliesDefaults(t *testing.T) {
	t.Setenv("SCHEDULING_LOCK_DRIVER", "local")

	cfg := config.Get()

	assert.Equal(t, 15, cfg.Scheduling.MinSlotMinutes)
	assert.Equal(t, 24, cfg.Scheduling.CancellationCutoffHours)
	assert.Equal(t, "local", cfg.Scheduling.Lock.Driver)
}
