package viewer

import (
	"time"

	"proofkit/internal/domain/album"
)

// Session is one anonymous viewer's single-use right to submit a selection
// batch. It flips submitted false to true exactly once and never back.
type Session struct {
	ID         string    `json:"id"`
	AlbumID    string    `json:"album_id"`
	SessionKey string    `json:"-"`
	Submitted  bool      `json:"submitted"`
	CreatedAt  time.Time `json:"created_at"`
}

// Selection is one (session, item) pick.
type Selection struct {
	ID         string    `json:"id"`
	AlbumID    string    `json:"album_id"`
	SessionKey string    `json:"-"`
	ItemID     string    `json:"item_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// SubmitResult is the tagged outcome of a submission attempt. Business-rule
// violations land here with a human-readable reason; only storage faults
// surface as errors.
type SubmitResult struct {
	OK     bool   `json:"success"`
	Reason string `json:"error,omitempty"`
}

// AlbumView is the public shape of an album served to anonymous viewers.
type AlbumView struct {
	Title          string        `json:"title"`
	Version        album.Version `json:"version"`
	AllowSelection bool          `json:"allow_selection"`
	SelectionLimit int           `json:"selection_limit"`
	ProjectID      string        `json:"project_id"`
	Items          []ItemView    `json:"items"`
}

// ItemView is the viewer-facing shape of an item. DisplayURL is the
// watermarked rendition when the album is RAW and one exists.
type ItemView struct {
	ID         string     `json:"id"`
	SerialNo   int64      `json:"serial_no"`
	Kind       album.Kind `json:"kind"`
	DisplayURL string     `json:"display_url"`
	ThumbURL   *string    `json:"thumb_url,omitempty"`
	Width      int        `json:"width,omitempty"`
	Height     int        `json:"height,omitempty"`
}
