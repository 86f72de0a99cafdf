package album

import (
	"fmt"
	"strings"
	"time"
)

// Version distinguishes the mutable collection album from the immutable
// curated one produced by finalization.
type Version string

const (
	VersionRaw   Version = "RAW"
	VersionFinal Version = "FINAL"
)

// Status is the album's owner-facing lifecycle state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusArchived Status = "ARCHIVED"
)

// Kind is the media kind of an item. It is a closed set; client-provided
// values must go through ParseKind before reaching the core.
type Kind string

const (
	KindImage Kind = "IMAGE"
	KindVideo Kind = "VIDEO"
)

// ParseKind validates a client-provided kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindImage:
		return KindImage, nil
	case KindVideo:
		return KindVideo, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, s)
	}
}

// Album is a shareable collection of items. RAW albums accept uploads and
// viewer selections; FINAL albums are frozen clones produced by Finalize.
type Album struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id"`
	OwnerID        string    `json:"-"`
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Version        Version   `json:"version"`
	AllowSelection bool      `json:"allow_selection"`
	SelectionLimit int       `json:"selection_limit"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// Item is a single photo or video. SerialNo is unique within the owning
// project, not within the album.
type Item struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	AlbumID   string    `json:"album_id"`
	SerialNo  int64     `json:"serial_no"`
	Kind      Kind      `json:"kind"`
	SrcURL    string    `json:"src_url"`
	WmURL     *string   `json:"wm_url,omitempty"`
	ThumbURL  *string   `json:"thumb_url,omitempty"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Bytes     int64     `json:"bytes,omitempty"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// Detail is an album together with its items in display order.
type Detail struct {
	Album Album  `json:"album"`
	Items []Item `json:"items"`
}

// PickCount is the per-item selection tally an owner reviews before
// choosing the finalize subset.
type PickCount struct {
	ItemID   string `json:"item_id"`
	SerialNo int64  `json:"serial_no"`
	ThumbURL string `json:"thumb_url"`
	Picks    int    `json:"picks_count"`
}

// ItemMeta carries the display metadata recorded alongside an upload.
type ItemMeta struct {
	WmURL     *string
	ThumbURL  *string
	Width     int
	Height    int
	Bytes     int64
	SortOrder int
}
