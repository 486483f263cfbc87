package models

// Game is the record the pipeline reads for a source or candidate app.
// Tags maps a tag name to its community vote weight.
type Game struct {
	AppID              int            `db:"app_id"              json:"app_id"`
	Name               string         `db:"name"                json:"name"`
	Developer          string         `db:"developer"           json:"developer"`
	Owners             string         `db:"owners"              json:"owners"`
	Tags               map[string]int `db:"tags"                json:"tags"`
	ContentDescriptors []int          `db:"content_descriptors" json:"content_descriptors"`
}

// GameRef is the lightweight row returned by tag lookups.
type GameRef struct {
	AppID  int    `json:"app_id"`
	Name   string `json:"name"`
	Owners string `json:"owners"`
}
