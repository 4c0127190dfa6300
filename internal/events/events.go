package events

import (
	"encoding/json"
	"time"
)

// Event types pushed to /events subscribers.
const (
	TypeWarmStarted   = "warm_started"
	TypeJobsRefreshed = "jobs_refreshed"
	TypeWarmFailed    = "warm_failed"
	TypeConfigUpdated = "config_updated"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}

// RefreshedData is the payload of TypeJobsRefreshed.
type RefreshedData struct {
	Queries int `json:"queries"`
	Jobs    int `json:"jobs"`
	TookMS  int `json:"took_ms"`
}
