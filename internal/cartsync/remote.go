package cartsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"boltform_back_end/internal/models"
)

// HTTPRemote talks to the /api/save endpoint with a session bearer token.
// The server resolves the user from the token, so userID is only used in
// error messages.
type HTTPRemote struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPRemote(baseURL, sessionToken string) *HTTPRemote {
	return &HTTPRemote{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   sessionToken,
		Client:  http.DefaultClient,
	}
}

type cartEnvelope struct {
	Items   []models.CartLine `json:"items"`
	Version int64             `json:"version"`
}

type saveRequest struct {
	Type    string            `json:"type"`
	Data    []models.CartLine `json:"data"`
	Version *int64            `json:"version,omitempty"`
}

type saveResponse struct {
	Message string `json:"message"`
	Version int64  `json:"version"`
	Error   string `json:"error"`
}

func (r *HTTPRemote) Load(ctx context.Context, userID string) ([]models.CartLine, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		r.BaseURL+"/api/save?"+url.Values{"type": {"cart"}}.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}

	var env cartEnvelope
	if err := r.do(req, http.StatusOK, &env); err != nil {
		return nil, 0, fmt.Errorf("load cart for %s: %w", userID, err)
	}
	if env.Items == nil {
		env.Items = []models.CartLine{}
	}
	return env.Items, env.Version, nil
}

func (r *HTTPRemote) Save(ctx context.Context, userID string, lines []models.CartLine, expectedVersion *int64) (int64, error) {
	if lines == nil {
		lines = []models.CartLine{}
	}
	body, err := json.Marshal(saveRequest{Type: "cart", Data: lines, Version: expectedVersion})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/api/save", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	var res saveResponse
	if err := r.do(req, http.StatusOK, &res); err != nil {
		return 0, fmt.Errorf("save cart for %s: %w", userID, err)
	}
	return res.Version, nil
}

func (r *HTTPRemote) do(req *http.Request, want int, out any) error {
	req.Header.Set("Authorization", "Bearer "+r.Token)

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return ErrVersionConflict
	}
	if resp.StatusCode != want {
		var body saveResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		msg := body.Error
		if msg == "" {
			msg = body.Message
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
