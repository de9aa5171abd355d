package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/stormarchive/timeline-service/internal/types/admins"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
}

func (c *HTTPClient) Login(ctx context.Context, username, password, securityAnswer string) (admins.LoginResponse, error) {
	payload, err := json.Marshal(admins.LoginRequest{
		Username:       username,
		Password:       password,
		SecurityAnswer: securityAnswer,
	})
	if err != nil {
		return admins.LoginResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(payload))
	if err != nil {
		return admins.LoginResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return admins.LoginResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return admins.LoginResponse{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		message := http.StatusText(resp.StatusCode)
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
			message = envelope.Error
		}
		return admins.LoginResponse{}, errors.New(message)
	}

	var out admins.LoginResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return admins.LoginResponse{}, err
	}
	return out, nil
}
