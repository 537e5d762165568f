package xero

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adevcorp-0/xero-shopify/internal/domain/credential"
)

const (
	identityTokenURL = "https://identity.xero.com/connect/token"
	connectionsURL   = "https://api.xero.com/connections"
	authorizeURL     = "https://login.xero.com/identity/connect/authorize"

	oauthScopes = "openid profile email accounting.settings accounting.contacts accounting.transactions offline_access"

	// Refresh slightly before the recorded expiry so an in-flight call never
	// races the cutoff.
	expirySkew = 60 * time.Second
)

// TokenStore persists the single Xero credential set.
type TokenStore interface {
	Get(ctx context.Context) (*credential.Token, error)
	Save(ctx context.Context, t *credential.Token) error
	UpdateAccess(ctx context.Context, accessToken, refreshToken string, expiresAt time.Time) error
}

// Auth handles the OAuth2 authorization-code flow and token refresh.
type Auth struct {
	clientID     string
	clientSecret string
	redirectURI  string
	store        TokenStore
	httpClient   *http.Client
}

func NewAuth(clientID, clientSecret, redirectURI string, store TokenStore) *Auth {
	return &Auth{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		store:        store,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AuthorizeURL builds the consent URL the user is redirected to.
func (a *Auth) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", a.clientID)
	q.Set("redirect_uri", a.redirectURI)
	q.Set("scope", oauthScopes)
	q.Set("state", state)

	return authorizeURL + "?" + q.Encode()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// ValidCredentials returns a usable access token and tenant id, refreshing
// the stored token if it has expired. ErrNoCredentials when nothing is
// stored.
func (a *Auth) ValidCredentials(ctx context.Context) (accessToken, tenantID string, err error) {
	tok, err := a.store.Get(ctx)
	if err != nil {
		return "", "", err
	}
	if tok == nil {
		return "", "", ErrNoCredentials
	}

	if time.Now().Add(expirySkew).Before(tok.ExpiresAt) {
		return tok.AccessToken, tok.TenantID, nil
	}

	refreshed, err := a.tokenRequest(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {tok.RefreshToken},
		"client_id":     {a.clientID},
		"client_secret": {a.clientSecret},
	})
	if err != nil {
		return "", "", fmt.Errorf("refresh token: %w", err)
	}

	expiresAt := time.Now().Add(time.Duration(refreshed.ExpiresIn) * time.Second)
	if err := a.store.UpdateAccess(ctx, refreshed.AccessToken, refreshed.RefreshToken, expiresAt); err != nil {
		return "", "", err
	}

	return refreshed.AccessToken, tok.TenantID, nil
}

// Connect exchanges an authorization code, resolves the tenant of the first
// connection and replaces the stored credential set.
func (a *Auth) Connect(ctx context.Context, code string) (tenantID string, err error) {
	tok, err := a.tokenRequest(ctx, url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {a.redirectURI},
		"client_id":     {a.clientID},
		"client_secret": {a.clientSecret},
	})
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}

	tenantID, err = a.firstTenant(ctx, tok.AccessToken)
	if err != nil {
		return "", err
	}

	err = a.store.Save(ctx, &credential.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TenantID:     tenantID,
		ExpiresAt:    time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	})
	if err != nil {
		return "", err
	}

	return tenantID, nil
}

func (a *Auth) tokenRequest(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, identityTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	return &tok, nil
}

func (a *Auth) firstTenant(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, connectionsURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("connections request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var connections []struct {
		TenantID string `json:"tenantId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&connections); err != nil {
		return "", fmt.Errorf("decode connections: %w", err)
	}
	if len(connections) == 0 {
		return "", fmt.Errorf("xero: no tenant connections for token")
	}

	return connections[0].TenantID, nil
}
