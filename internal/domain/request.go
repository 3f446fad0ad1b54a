package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// CheckRequest is a check submitted over HTTP or through the request queue.
// Number is kept as raw text and parsed the same way on both paths.
type CheckRequest struct {
	ID        string     `json:"request_id"`
	Number    NumberText `json:"number"`
	CreatedAt time.Time  `json:"created_at"`
}

// NumberText accepts the number either as a JSON string or as any other JSON
// value, which is kept as its literal text. null is treated as empty.
type NumberText string

func (t *NumberText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = NumberText(s)
		return nil
	}

	*t = NumberText(b)
	return nil
}
