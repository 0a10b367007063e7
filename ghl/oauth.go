// ABOUTME: OAuth configuration and refresh-token exchange for the GoHighLevel API
// ABOUTME: Resolves client credentials from settings with environment fallback
package ghl

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the GoHighLevel REST API host.
	DefaultBaseURL = "https://services.leadconnectorhq.com"

	// DefaultAuthURL is where admins are sent to pick a location and authorize.
	DefaultAuthURL = "https://marketplace.gohighlevel.com/oauth/chooselocation"

	// APIVersion is the fixed Version header required on every call.
	APIVersion = "2021-07-28"
)

// OAuthScopes are requested during the initial authorization.
var OAuthScopes = []string{
	"contacts.readonly",
	"contacts.write",
	"locations/customFields.readonly",
}

// OAuthConfig builds the oauth2 config used for the initial connect flow.
func (c *Client) OAuthConfig(ctx context.Context, redirectURL string) (*oauth2.Config, error) {
	clientID, clientSecret, err := c.clientCredentials(ctx)
	if err != nil {
		return nil, err
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       OAuthScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.authURL,
			TokenURL: c.baseURL + "/oauth/token",
		},
	}, nil
}

// clientCredentials resolves the OAuth client id/secret: settings first,
// environment fallback. Missing credentials are a configuration error.
func (c *Client) clientCredentials(ctx context.Context) (string, string, error) {
	clientID, err := c.store.Get(ctx, KeyClientID)
	if err != nil {
		return "", "", err
	}
	if clientID == "" {
		clientID = os.Getenv("GHL_CLIENT_ID")
	}

	clientSecret, err := c.store.Get(ctx, KeyClientSecret)
	if err != nil {
		return "", "", err
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GHL_CLIENT_SECRET")
	}

	if clientID == "" || clientSecret == "" {
		return "", "", fmt.Errorf("gohighlevel OAuth credentials not configured: set %s/%s settings or GHL_CLIENT_ID and GHL_CLIENT_SECRET environment variables", KeyClientID, KeyClientSecret)
	}

	return clientID, clientSecret, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	LocationID   string `json:"locationId"`
}

// Refresh exchanges the refresh token for a new token pair and persists it.
// A non-2xx provider response returns (false, nil): the caller decides
// whether to proceed without a fresh token. Configuration and transport
// problems return an error.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (bool, error) {
	clientID, clientSecret, err := c.clientCredentials(ctx)
	if err != nil {
		return false, err
	}

	form := url.Values{}
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to call token endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("gohighlevel token refresh rejected: %s", resp.Status)
		return false, nil
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return false, fmt.Errorf("failed to decode token response: %w", err)
	}

	// Keep the old refresh token if the provider didn't rotate it
	newRefresh := token.RefreshToken
	if newRefresh == "" {
		newRefresh = refreshToken
	}

	creds := &Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    c.now().Add(time.Duration(token.ExpiresIn) * time.Second),
		LocationID:   token.LocationID,
	}
	if err := SaveCredentials(ctx, c.store, creds); err != nil {
		return false, err
	}

	return true, nil
}
