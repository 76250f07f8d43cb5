package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetStatus(t *testing.T) {
	o := &Orchestrator{config: &Config{
		RefreshInterval: 15 * time.Minute,
		Season:          "2026",
		EnableRefresh:   true,
	}}

	status := o.GetStatus()

	assert.Equal(t, true, status["refresh_enabled"])
	assert.Equal(t, "15m0s", status["refresh_interval"])
	assert.Equal(t, "2026", status["season"])
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 30*time.Minute, config.RefreshInterval)
	assert.True(t, config.EnableRefresh)
	assert.Equal(t, 3, config.MaxRetries)
}
