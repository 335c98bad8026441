// Package paste uploads text too long for a chat message to rentry.co
// and returns a shareable URL.
package paste

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

const defaultBaseURL = "https://rentry.co"

type Client struct {
	http    *http.Client
	baseURL string
}

func New() *Client {
	return &Client{http: &http.Client{}, baseURL: defaultBaseURL}
}

// Upload posts text as a new paste and returns its public URL.
func (c *Client) Upload(ctx context.Context, text string) (string, error) {
	token, err := c.csrfToken(ctx)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("csrfmiddlewaretoken", token); err != nil {
		return "", fmt.Errorf("building paste form: %w", err)
	}
	if err := form.WriteField("text", text); err != nil {
		return "", fmt.Errorf("building paste form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("building paste form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/new", &body)
	if err != nil {
		return "", fmt.Errorf("creating paste request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Cookie", "csrftoken="+token)
	req.Header.Set("Referer", c.baseURL)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading paste: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading paste response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("uploading paste: %s %s", resp.Status, string(respBody))
	}

	// The endpoint serves JSON with a text/plain content type.
	var parsed struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parsing paste response: %w", err)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("paste response carried no url: %s", string(respBody))
	}
	return parsed.URL, nil
}

func (c *Client) csrfToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating csrf request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching csrf token: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "csrftoken" {
			return cookie.Value, nil
		}
	}
	return "", fmt.Errorf("no csrftoken cookie in response from %s", c.baseURL)
}
