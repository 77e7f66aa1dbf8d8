package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("18:05:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 18, Minute: 5, Second: 30}, tod)
	assert.Equal(t, "18:05:30", tod.String())

	_, err = ParseTimeOfDay("6pm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "6pm")

	_, err = ParseTimeOfDay("25:00:00")
	require.Error(t, err)
}

func TestTimeOfDay_At(t *testing.T) {
	tod := TimeOfDay{Hour: 7, Minute: 30}
	date := time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC), tod.At(date))
}
