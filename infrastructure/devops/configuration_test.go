package devops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromParameter(t *testing.T) {
	value := `
database:
  driver: postgres
  dsn: postgres://fieldforce@db/fieldforce
live:
  staleAfter: 5m
mail:
  from: reports@example.com
  to: [accounts@example.com]
`
	env := map[string]string{"GEMINI_API_KEY": "key-from-env"}

	cfg, err := FromParameter(value, func(k string) string { return env[k] })
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Live.StaleAfter)
	assert.Equal(t, "key-from-env", cfg.AI.APIKey)
	assert.Equal(t, []string{"accounts@example.com"}, cfg.Mail.To)

	_, err = FromParameter("database:\n  driver: oracle\n", func(string) string { return "" })
	assert.Error(t, err)
}
