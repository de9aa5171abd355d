package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/stormarchive/timeline-service/internal/types"
)

// HTTPClient implements Client against the admin REST API. Any non-2xx
// status is a failure regardless of body shape; the envelope's error
// message is used when present.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    http.DefaultClient,
	}
}

type errorEnvelope struct {
	Error string `json:"error"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope errorEnvelope
		message := http.StatusText(resp.StatusCode)
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
			message = envelope.Error
		}
		return &HTTPError{Status: resp.StatusCode, Message: message}
	}

	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, bytes.NewReader(body), "application/json", out)
}

func (c *HTTPClient) CreateEvent(ctx context.Context, fields types.EventRequest) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/events", fields, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *HTTPClient) UpdateEvent(ctx context.Context, id string, fields types.EventRequest) error {
	return c.doJSON(ctx, http.MethodPut, "/events/"+id, fields, nil)
}

func (c *HTTPClient) ListMedia(ctx context.Context, eventID string) ([]types.MediaItem, error) {
	var items []types.MediaItem
	if err := c.do(ctx, http.MethodGet, "/events/"+eventID+"/media", nil, "", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) UploadMedia(ctx context.Context, eventID string, file []byte, contentType, caption string) (types.MediaItem, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="upload"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return types.MediaItem{}, err
	}
	if _, err := part.Write(file); err != nil {
		return types.MediaItem{}, err
	}
	if err := writer.WriteField("caption", caption); err != nil {
		return types.MediaItem{}, err
	}
	if err := writer.Close(); err != nil {
		return types.MediaItem{}, err
	}

	var item types.MediaItem
	err = c.do(ctx, http.MethodPost, "/events/"+eventID+"/media", &buf, writer.FormDataContentType(), &item)
	if err != nil {
		return types.MediaItem{}, err
	}
	return item, nil
}

func (c *HTTPClient) UpdateMediaCaption(ctx context.Context, mediaID, caption string) (string, error) {
	var out struct {
		Caption string `json:"caption"`
	}
	payload := map[string]string{"caption": caption}
	if err := c.doJSON(ctx, http.MethodPatch, "/media/"+mediaID, payload, &out); err != nil {
		return "", err
	}
	return out.Caption, nil
}

func (c *HTTPClient) DeleteMedia(ctx context.Context, eventID, mediaID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/events/%s/media/%s", eventID, mediaID), nil, "", nil)
}
