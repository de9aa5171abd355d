package types

import "time"

// Event is one historical record shown on the public timeline.
// EventDate carries the storage form YYYY-MM-DD; DisplayDate is the
// long form rendered on the site (e.g. "September 1, 1859").
type Event struct {
	ID               string `json:"id"`
	EventDate        string `json:"event_date"`
	DisplayDate      string `json:"display_date,omitempty"`
	Type             string `json:"type"`
	Location         string `json:"location"`
	Title            string `json:"title"`
	ShortDescription string `json:"short_description"`
	Summary          string `json:"summary"`
	Impact           string `json:"impact"`
	CreatedAt        string `json:"created_at,omitempty"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}

// EventRequest is the create/update payload. Every content field is
// mandatory; the date must already be in storage form.
type EventRequest struct {
	EventDate        string `json:"event_date" validate:"required,datetime=2006-01-02"`
	Type             string `json:"type" validate:"required"`
	Location         string `json:"location" validate:"required"`
	Title            string `json:"title" validate:"required"`
	ShortDescription string `json:"short_description" validate:"required"`
	Summary          string `json:"summary" validate:"required"`
	Impact           string `json:"impact" validate:"required"`
}

// MediaItem is one image attachment owned by exactly one event.
type MediaItem struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	ObjectKey   string    `json:"object_key"`
	URL         string    `json:"url"`
	Caption     string    `json:"caption"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type CaptionUpdateRequest struct {
	Caption string `json:"caption" validate:"required"`
}

type AboutSection struct {
	ID       string `json:"id"`
	Heading  string `json:"heading"`
	Body     string `json:"body"`
	Position int    `json:"position"`
}

type TeamMember struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Bio      string `json:"bio"`
	PhotoURL string `json:"photo_url"`
	Position int    `json:"position"`
}
