package model

import (
	"time"

	"github.com/goccy/go-json"
)

// Activity is one entry of a user's recent-activity history.
type Activity struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Mood      string    `json:"mood"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

type activityWire struct {
	LogID     FlexString `json:"log_id"`
	ID        FlexString `json:"id"`
	UserID    FlexString `json:"user_id"`
	Action    string     `json:"action"`
	Mood      string     `json:"mood"`
	CreatedAt *time.Time `json:"created_at"`
}

// UnmarshalJSON accepts either "log_id" or "id" as the identifier and an
// optional "created_at".
func (a *Activity) UnmarshalJSON(data []byte) error {
	var w activityWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*a = Activity{
		ID:     firstNonEmpty(w.LogID, w.ID),
		UserID: string(w.UserID),
		Action: w.Action,
		Mood:   w.Mood,
	}
	if w.CreatedAt != nil {
		a.CreatedAt = *w.CreatedAt
	}
	return nil
}
