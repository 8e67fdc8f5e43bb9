package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeAcceptsStoredShapes(t *testing.T) {
	want := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

	cases := map[string]interface{}{
		"rfc3339 offset": "2024-06-01T10:30:00+02:00",
		"stored layout":  "2024-06-01T08:30:00.000000Z",
		"epoch millis":   float64(want.UnixMilli()),
		"json number":    json.Number("1717230600000"),
		"seconds object": map[string]interface{}{"seconds": float64(want.Unix()), "nanoseconds": float64(0)},
		"legacy object":  map[string]interface{}{"_seconds": float64(want.Unix()), "_nanoseconds": float64(0)},
		"time value":     want.In(time.FixedZone("X", 3600)),
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseTime(input)
			require.NoError(t, err)
			assert.True(t, want.Equal(got))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	for _, input := range []interface{}{"", "yesterday", true, map[string]interface{}{"nanoseconds": 1.0}} {
		_, err := ParseTime(input)
		assert.ErrorIs(t, err, ErrInvalidTimestamp)
	}
}

func TestFormatTimeSortsLexically(t *testing.T) {
	a := FormatTime(time.Date(2024, 6, 1, 8, 30, 5, 100000000, time.UTC))
	b := FormatTime(time.Date(2024, 6, 1, 8, 30, 5, 120000000, time.UTC))
	c := FormatTime(time.Date(2024, 6, 1, 8, 30, 6, 0, time.UTC))
	assert.Less(t, a, b)
	assert.Less(t, b, c)
}
