package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRestaurant(t *testing.T) {
	doc := []byte(`
timezone: Asia/Tokyo
tables:
  - {number: 1, capacity: 2}
  - {number: 2, capacity: 4}
guestLimits:
  web: 6
`)
	r, err := ParseRestaurant(doc)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", r.Location().String())
	assert.Len(t, r.Tables, 2)
	assert.Equal(t, 6, r.GuestLimits["web"])
}

func TestParseRestaurantDefaults(t *testing.T) {
	r, err := ParseRestaurant([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", r.Timezone)
	assert.Len(t, r.Tables, 10)
	assert.Equal(t, 8, r.GuestLimits["quick"])
}

func TestParseRestaurantRejects(t *testing.T) {
	cases := map[string]string{
		"timezone":  "timezone: Mars/Olympus",
		"duplicate": "tables: [{number: 1, capacity: 2}, {number: 1, capacity: 4}]",
		"number":    "tables: [{number: 0, capacity: 2}]",
		"capacity":  "tables: [{number: 3, capacity: 0}]",
		"limit":     "guestLimits: {web: 0}",
		"yaml":      "tables: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRestaurant([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadRestaurantFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restaurant.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tables: [{number: 7, capacity: 2}]\n"), 0o600))

	r, err := LoadRestaurant(path)
	require.NoError(t, err)
	require.Len(t, r.Tables, 1)
	assert.Equal(t, 7, r.Tables[0].Number)

	_, err = LoadRestaurant(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadMemory(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("BOOKING_TIMEOUT", "2s")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("SESSION_HASH_KEY", "")
	t.Setenv("SESSION_BLOCK_KEY", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.Equal(t, 2*time.Second, cfg.BookingTimeout)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "s3cret", cfg.SessionHashKey)
	assert.True(t, cfg.IsDev())
}

func TestLoadReportsEveryProblem(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("BCRYPT_COST", "twelve")

	_, err := Load()
	require.Error(t, err)
	for _, key := range []string{"JWT_SECRET", "DB_USER", "DB_HOST", "DB_PORT", "DB_NAME", "BCRYPT_COST"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoadWorker(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://mq:5672/")
	t.Setenv("NOTIFY_QUEUE", "")

	cfg := LoadWorker()
	assert.Equal(t, "amqp://mq:5672/", cfg.RabbitURL)
	assert.Equal(t, "reservation.notifications", cfg.NotifyQueue)
}
