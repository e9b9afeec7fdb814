package json_types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeAcceptsBackendFormats(t *testing.T) {
	var withSeconds, short Time
	require.NoError(t, json.Unmarshal([]byte(`"09:30:00"`), &withSeconds))
	require.NoError(t, json.Unmarshal([]byte(`"09:30"`), &short))

	assert.True(t, withSeconds.Equal(short))
	assert.Equal(t, 9*60+30, short.Minutes())

	out, err := json.Marshal(withSeconds)
	require.NoError(t, err)
	assert.Equal(t, `"09:30"`, string(out))
}

func TestTimeRejectsGarbage(t *testing.T) {
	var v Time
	assert.Error(t, json.Unmarshal([]byte(`"9h30"`), &v))
	assert.Error(t, json.Unmarshal([]byte(`930`), &v))
}

func TestDateRoundTripAndWeekday(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-06-10"`), &d))

	assert.Equal(t, time.Monday, d.Weekday())
	assert.Equal(t, "2024-06-10", d.String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.Equal(NewDate(2024, time.June, 10)))
}

func TestDateOfUsesOwnLocation(t *testing.T) {
	moscow := time.FixedZone("UTC+3", 3*60*60)
	moment := time.Date(2024, time.June, 10, 1, 0, 0, 0, moscow)

	assert.Equal(t, "2024-06-10", DateOf(moment).String())
	assert.Equal(t, "2024-06-09", DateOf(moment.UTC()).String())
}

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var payload struct {
		Doctor  ID `json:"doctor"`
		Patient ID `json:"patient"`
		Empty   ID `json:"empty"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"doctor": 12, "patient": "b2c1", "empty": null}`), &payload))

	assert.Equal(t, ID("12"), payload.Doctor)
	assert.Equal(t, ID("b2c1"), payload.Patient)
	assert.True(t, payload.Empty.IsEmpty())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"doctor": 12, "patient": "b2c1", "empty": null}`, string(out))
}
