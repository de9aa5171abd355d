package editor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stormarchive/timeline-service/internal/types"
)

func TestHTTPClientCreateEvent(t *testing.T) {
	var gotAuth string
	var gotBody types.EventRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/events" {
			t.Fatalf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"42"}`)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "tok")
	id, err := client.CreateEvent(context.Background(), types.EventRequest{
		EventDate: "1859-09-01",
		Title:     "The Carrington Event",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if id != "42" {
		t.Fatalf("Expected id 42, got %q", id)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("Expected bearer token header, got %q", gotAuth)
	}
	if gotBody.EventDate != "1859-09-01" {
		t.Fatalf("Expected storage-form date in payload, got %q", gotBody.EventDate)
	}
}

func TestHTTPClientSurfacesErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"status":"error","error":"media not found"}`)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "tok")
	_, err := client.UpdateMediaCaption(context.Background(), "9", "new caption")
	if err == nil {
		t.Fatal("Expected error")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Expected *HTTPError, got %T", err)
	}
	if httpErr.Status != 404 || httpErr.Message != "media not found" {
		t.Fatalf("Expected 404 with envelope message, got %+v", httpErr)
	}
	if !IsNotFound(err) {
		t.Fatal("Expected IsNotFound to match")
	}
}

func TestHTTPClientNonJSONErrorBodyFallsBackToStatusText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream exploded")
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "")
	err := client.DeleteMedia(context.Background(), "7", "9")

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Expected *HTTPError, got %T", err)
	}
	if httpErr.Status != 502 || httpErr.Message != "Bad Gateway" {
		t.Fatalf("Expected status-text fallback, got %+v", httpErr)
	}
}

func TestHTTPClientUploadMediaMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Failed to parse multipart body: %v", err)
		}
		if got := r.FormValue("caption"); got != "aurora over Boston" {
			t.Fatalf("Expected caption field, got %q", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("Expected file part: %v", err)
		}
		defer file.Close()
		if header.Header.Get("Content-Type") != "image/jpeg" {
			t.Fatalf("Expected content type preserved, got %q", header.Header.Get("Content-Type"))
		}
		data, _ := io.ReadAll(file)
		if string(data) != "jpeg-bytes" {
			t.Fatalf("Expected file bytes, got %q", data)
		}

		json.NewEncoder(w).Encode(types.MediaItem{ID: "9", EventID: "7", Caption: "aurora over Boston"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "tok")
	item, err := client.UploadMedia(context.Background(), "7", []byte("jpeg-bytes"), "image/jpeg", "aurora over Boston")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if item.ID != "9" || item.Caption != "aurora over Boston" {
		t.Fatalf("Expected echoed row, got %+v", item)
	}
}
