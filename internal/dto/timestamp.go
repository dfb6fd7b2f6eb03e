package dto

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"time"
)

// Timestamp is written in HTTP date form ("Mon, 22 Jan 2024 17:00:52 GMT")
// and read from either that form or RFC 3339.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	http.TimeFormat,
	time.RFC1123,
	time.RFC1123Z,
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(http.TimeFormat))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return typeError(data, reflect.TypeOf(time.Time{}))
	}

	parsed, err := ParseTimestamp(text)
	if err != nil {
		return typeError(data, reflect.TypeOf(time.Time{}))
	}
	t.Time = parsed
	return nil
}

func ParseTimestamp(text string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", text)
}
