package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/brightpath/guidance-service/internal/config"
	"github.com/brightpath/guidance-service/internal/domain"
)

// ErrInvalidToken is returned when a bearer token fails provider validation.
var ErrInvalidToken = errors.New("invalid or expired token")

// Provider validates bearer tokens against the identity service and
// returns the account they belong to.
type Provider interface {
	ResolveToken(ctx context.Context, token string) (*domain.Identity, error)
}

// remoteProvider calls the managed auth endpoint to validate tokens.
type remoteProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRemoteProvider builds the HTTP-backed provider.
func NewRemoteProvider(cfg config.IdentityConfig) (Provider, error) {
	if cfg.ProviderURL == "" {
		return nil, errors.New("IDENTITY_PROVIDER_URL is required in remote mode")
	}
	return &remoteProvider{
		baseURL:    cfg.ProviderURL,
		apiKey:     cfg.ProviderKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}, nil
}

type remoteUserResponse struct {
	ID          string             `json:"id"`
	Email       string             `json:"email"`
	AppMetadata domain.AppMetadata `json:"app_metadata"`
}

func (p *remoteProvider) ResolveToken(ctx context.Context, token string) (*domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidToken
	default:
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var body remoteUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}
	if body.ID == "" {
		return nil, ErrInvalidToken
	}

	return &domain.Identity{
		ID:          body.ID,
		Email:       body.Email,
		AppMetadata: body.AppMetadata,
	}, nil
}
