package extend

import (
	"encoding/json"
	"time"
)

const (
	dateLayout = "2006-01-02"
	// wireLayout is the timestamp format the API expects in request bodies.
	wireLayout = "2006-01-02T15:04:05.000Z"
)

// Time supports unmarshalling times returned by the Extend API.
type Time struct {
	time.Time
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
func (m *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if t, err := time.Parse(dateLayout, s); err == nil {
		m.Time = t
		return nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	m.Time = t

	return nil
}

// MarshalJSON implements the [json.Marshaler] interface.
func (m Time) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(m.UTC().Format(time.RFC3339Nano))
}

// startOfDay formats the calendar date of t as midnight UTC.
func startOfDay(t time.Time) string {
	return t.Format(dateLayout) + "T00:00:00.000Z"
}

// endOfDay formats t for fields that close a validity window.
// A date without a clock time is extended to the last millisecond of that
// day; a value with a clock time is sent as given.
func endOfDay(t time.Time) string {
	if isDateOnly(t) {
		return t.Format(dateLayout) + "T23:59:59.999Z"
	}

	return t.UTC().Format(wireLayout)
}

func isDateOnly(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

// dateOf truncates t to its calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
