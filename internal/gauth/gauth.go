package gauth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// Session is an authorized connection to Google APIs
type Session struct {
	HTTPClient  *http.Client
	ClientEmail string
}

// AuthorizeFile reads a service-account key file and exchanges it for a session
func AuthorizeFile(ctx context.Context, path string, scopes []string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials %s: %w", path, err)
	}
	return Authorize(ctx, data, scopes)
}

// Authorize exchanges service-account JSON plus scopes for an authorized
// HTTP client. The first token is fetched immediately so bad credentials
// fail here rather than on the first API call.
func Authorize(ctx context.Context, credentialsJSON []byte, scopes []string) (*Session, error) {
	var meta struct {
		Type        string `json:"type"`
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(credentialsJSON, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if meta.Type != "service_account" {
		return nil, fmt.Errorf("expected service_account credentials, got %q", meta.Type)
	}

	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	if _, err := creds.TokenSource.Token(); err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}

	slog.Info("Authorized service account", "email", meta.ClientEmail, "scopes", scopes)
	return &Session{
		HTTPClient:  oauth2.NewClient(ctx, creds.TokenSource),
		ClientEmail: meta.ClientEmail,
	}, nil
}

// ClientOptions returns the options that route API calls through the session
func (s *Session) ClientOptions() []option.ClientOption {
	return []option.ClientOption{option.WithHTTPClient(s.HTTPClient)}
}
