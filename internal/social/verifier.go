// Package social exchanges provider-issued access tokens for verified
// external identities. Unlike a full authorization-code flow, the client
// already holds a provider token; we only call the provider's userinfo
// endpoint with it and read back the external id and email.
package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/get30seconds/auth-api/internal/domain"
	"golang.org/x/oauth2"
)

// ErrInvalidToken is returned when the provider rejects the presented
// token. Transport failures are reported as ordinary wrapped errors so
// callers can tell the two apart.
var ErrInvalidToken = errors.New("provider token is invalid")

// Identity is the verified external identity returned by a provider.
type Identity struct {
	ID    string
	Email string
}

// Verifier exchanges a provider access token for a verified identity.
type Verifier interface {
	UserFromToken(ctx context.Context, provider, token string) (*Identity, error)
}

// Endpoints holds the userinfo URLs per provider. Overridable in tests.
type Endpoints struct {
	Google   string
	Facebook string
}

// DefaultEndpoints returns the production userinfo endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Google:   "https://www.googleapis.com/oauth2/v3/userinfo",
		Facebook: "https://graph.facebook.com/v19.0/me?fields=id,email",
	}
}

// HTTPVerifier verifies provider tokens over HTTP.
type HTTPVerifier struct {
	endpoints Endpoints
}

// NewHTTPVerifier creates a verifier calling the given userinfo endpoints.
func NewHTTPVerifier(endpoints Endpoints) *HTTPVerifier {
	return &HTTPVerifier{endpoints: endpoints}
}

// UserFromToken calls the provider's userinfo endpoint with the token as
// a bearer credential and decodes the identity from the response.
func (v *HTTPVerifier) UserFromToken(ctx context.Context, provider, token string) (*Identity, error) {
	var endpoint string
	switch provider {
	case domain.ProviderGoogle:
		endpoint = v.endpoints.Google
	case domain.ProviderFacebook:
		endpoint = v.endpoints.Facebook
	default:
		return nil, fmt.Errorf("unsupported provider %q: %w", provider, ErrInvalidToken)
	}

	// oauth2.NewClient attaches "Authorization: Bearer <token>" to every
	// request made with it.
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := oauth2.NewClient(ctx, src)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s userinfo endpoint: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden ||
		resp.StatusCode == http.StatusBadRequest {
		return nil, fmt.Errorf("%s rejected token with status %d: %w", provider, resp.StatusCode, ErrInvalidToken)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s userinfo endpoint returned status %d", provider, resp.StatusCode)
	}

	identity, err := decodeIdentity(provider, resp)
	if err != nil {
		return nil, err
	}

	// An identity without an email cannot be matched to an account.
	if identity.Email == "" || identity.ID == "" {
		return nil, fmt.Errorf("%s returned an incomplete identity: %w", provider, ErrInvalidToken)
	}

	return identity, nil
}

func decodeIdentity(provider string, resp *http.Response) (*Identity, error) {
	switch provider {
	case domain.ProviderGoogle:
		// https://www.googleapis.com/oauth2/v3/userinfo: "sub" is the
		// stable account id.
		var body struct {
			Sub   string `json:"sub"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("decoding google userinfo response: %w", err)
		}
		return &Identity{ID: body.Sub, Email: body.Email}, nil
	default:
		var body struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("decoding facebook userinfo response: %w", err)
		}
		return &Identity{ID: body.ID, Email: body.Email}, nil
	}
}
