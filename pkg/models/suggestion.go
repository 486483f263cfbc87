package models

import "time"

// Suggestion is a persisted (source, suggested) pair. A successful job run
// replaces every row for its source app.
type Suggestion struct {
	SourceAppID    int       `db:"source_app_id"    json:"source_app_id"`
	SuggestedAppID int       `db:"suggested_app_id" json:"suggested_app_id"`
	Rank           int       `db:"rank"             json:"rank"`
	Reason         string    `db:"reason"           json:"reason"`
	CreatedAt      time.Time `db:"created_at"       json:"created_at"`
}
