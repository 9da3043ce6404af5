package detection

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a hosted object-detection inference endpoint
type Client struct {
	Endpoint   string
	APIKey     string
	ModelID    string
	httpClient *http.Client
}

// Prediction is a single detected object. Only the number of predictions
// matters to palletlog; the fields are kept for logging.
type Prediction struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// Result is the decoded inference response
type Result struct {
	Predictions []Prediction `json:"predictions"`
}

// NewClient creates a new detection client
func NewClient(endpoint, apiKey, modelID string) *Client {
	return &Client{
		Endpoint: strings.TrimRight(endpoint, "/"),
		APIKey:   apiKey,
		ModelID:  strings.Trim(modelID, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Infer sends the image to the inference endpoint and returns its predictions
func (c *Client) Infer(ctx context.Context, image []byte) (*Result, error) {
	if c.ModelID == "" {
		return nil, fmt.Errorf("detection model id not configured")
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("no image to run detection on")
	}

	inferURL := fmt.Sprintf("%s/%s?api_key=%s", c.Endpoint, c.ModelID, url.QueryEscape(c.APIKey))
	body := base64.StdEncoding.EncodeToString(image)

	req, err := http.NewRequestWithContext(ctx, "POST", inferURL, bytes.NewBufferString(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create detection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call detection API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("detection API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode detection response: %w", err)
	}

	return &result, nil
}
