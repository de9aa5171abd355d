package editor

import "github.com/stormarchive/timeline-service/internal/types"

// MediaKind tags the two lifecycle states a media entry can be in.
// Exactly one applies to any entry; consumers must branch on it rather
// than probe for optional fields.
type MediaKind int

const (
	// MediaQueued is local only: it has a LocalID, the raw file bytes
	// and a preview handle, and exists only while a create-mode session
	// has not persisted its event yet.
	MediaQueued MediaKind = iota
	// MediaPersisted is confirmed on the server: it has a server ID and
	// a remote URL.
	MediaPersisted
)

type Media struct {
	Kind    MediaKind
	Caption string

	// Persisted only.
	ID  string
	URL string

	// Queued only.
	LocalID     string
	File        []byte
	ContentType string
	Preview     *PreviewHandle
}

func persistedMedia(item types.MediaItem) Media {
	return Media{
		Kind:    MediaPersisted,
		ID:      item.ID,
		URL:     item.URL,
		Caption: item.Caption,
	}
}
