package editor

import (
	"context"
	"fmt"

	"github.com/stormarchive/timeline-service/internal/types"
)

// Client is the slice of the admin API the editor drives. Any non-2xx
// response surfaces as an *HTTPError regardless of body shape.
type Client interface {
	CreateEvent(ctx context.Context, fields types.EventRequest) (string, error)
	UpdateEvent(ctx context.Context, id string, fields types.EventRequest) error
	ListMedia(ctx context.Context, eventID string) ([]types.MediaItem, error)
	UploadMedia(ctx context.Context, eventID string, file []byte, contentType, caption string) (types.MediaItem, error)
	UpdateMediaCaption(ctx context.Context, mediaID, caption string) (string, error)
	DeleteMedia(ctx context.Context, eventID, mediaID string) error
}

// HTTPError is a non-success response from the API, carrying the
// machine-readable message from the error envelope.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsNotFound reports whether the error means the target record
// vanished server-side between load and action.
func IsNotFound(err error) bool {
	httpErr, ok := err.(*HTTPError)
	return ok && httpErr.Status == 404
}
