package notify

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

func sample() model.ReservationNotification {
	return model.ReservationNotification{
		ReservationID:   42,
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		ReservationDate: "Wednesday, December 24, 2025",
		ReservationTime: "19:00",
		NumberOfGuests:  4,
		TableNumber:     3,
	}
}

func TestEventLine(t *testing.T) {
	ev := Event{EventID: "e-1", ReservationNotification: sample(), ConfirmedAt: "2025-12-01T12:00:00Z"}
	line := ev.Line()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Contains(t, line, "event_id=e-1")
	assert.Contains(t, line, "reservation_id=42")
	assert.Contains(t, line, `customer="Ada Lovelace"`)
	assert.Contains(t, line, "table=3")
}

func TestNewEventIsUnique(t *testing.T) {
	a, b := NewEvent(sample()), NewEvent(sample())
	assert.NotEmpty(t, a.EventID)
	assert.NotEqual(t, a.EventID, b.EventID)
	assert.Equal(t, uint64(42), a.ReservationID)
}

func TestConsumerHandleDedups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "notifications.log")
	c := NewConsumer("", "", path, zerolog.Nop())

	body, err := json.Marshal(NewEvent(sample()))
	require.NoError(t, err)
	require.NoError(t, c.Handle(body))
	require.NoError(t, c.Handle(body))

	other, err := json.Marshal(NewEvent(sample()))
	require.NoError(t, err)
	require.NoError(t, c.Handle(other))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(b), "\n"))
}

func TestConsumerHandleRejects(t *testing.T) {
	c := NewConsumer("", "", filepath.Join(t.TempDir(), "n.log"), zerolog.Nop())
	assert.Error(t, c.Handle([]byte("not json")))
	assert.Error(t, c.Handle([]byte(`{"eventId":"x"}`)))
}

func TestNewTransport(t *testing.T) {
	tr, err := New(Config{}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, tr)
	assert.NoError(t, tr.SendReservationNotification(t.Context(), sample()))

	_, err = New(Config{Transport: TransportKafka}, zerolog.Nop())
	assert.Error(t, err)
	_, err = New(Config{Transport: "pigeon"}, zerolog.Nop())
	assert.Error(t, err)
}
