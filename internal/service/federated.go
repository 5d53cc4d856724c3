package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/saurab2057/Filetool/internal/model"
	"golang.org/x/oauth2"
)

// FederatedVerifier exchanges a provider access token for the user's profile.
type FederatedVerifier interface {
	Profile(ctx context.Context, accessToken string) (*model.FederatedProfile, error)
}

// GoogleVerifier calls the Google userinfo endpoint with the client-obtained token.
type GoogleVerifier struct {
	userInfoURL string
	base        *http.Client
}

// NewGoogleVerifier returns a verifier for userInfoURL. base may be nil.
func NewGoogleVerifier(userInfoURL string, base *http.Client) *GoogleVerifier {
	return &GoogleVerifier{userInfoURL: userInfoURL, base: base}
}

func (v *GoogleVerifier) Profile(ctx context.Context, accessToken string) (*model.FederatedProfile, error) {
	if v.base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, v.base)
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get google user info: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info: unexpected status %d", resp.StatusCode)
	}

	var profile model.FederatedProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode google user info: %w", err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("google user info: missing email")
	}

	return &profile, nil
}
