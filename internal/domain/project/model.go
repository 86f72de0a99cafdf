package project

import "time"

// Project groups albums under one owner and carries the serial counter
// that tags every item uploaded into any of its albums.
type Project struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary is a lightweight representation for listing
type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Key        string    `json:"key"`
	AlbumCount int       `json:"album_count"`
	CreatedAt  time.Time `json:"created_at"`
}
