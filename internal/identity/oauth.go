package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sectorwars2102/gameserver/internal/domain/account"
)

const maxOAuthResponseBytes = 256 << 10

// ProviderEndpoints is the fixed wiring for one external OAuth2 provider:
// where to send the user to authorize, where to exchange the code, and
// where to fetch the profile that becomes the account's display name.
type ProviderEndpoints struct {
	AuthURL     string
	TokenURL    string
	UserInfoURL string
	Scope       string
}

var providerEndpoints = map[account.Provider]ProviderEndpoints{
	account.ProviderCodeHost: {
		AuthURL:     "https://github.com/login/oauth/authorize",
		TokenURL:    "https://github.com/login/oauth/access_token",
		UserInfoURL: "https://api.github.com/user",
		Scope:       "read:user user:email",
	},
	account.ProviderSearchEngine: {
		AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:    "https://oauth2.googleapis.com/token",
		UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		Scope:       "openid email profile",
	},
	account.ProviderGamingPlatform: {
		AuthURL:     "https://discord.com/api/oauth2/authorize",
		TokenURL:    "https://discord.com/api/oauth2/token",
		UserInfoURL: "https://discord.com/api/users/@me",
		Scope:       "identify email",
	},
}

// ProviderCredentials is the client id/secret for one configured provider.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
}

// OAuthClient drives the authorization-code exchange for whichever of the
// three external providers are configured.
type OAuthClient struct {
	httpClient  *http.Client
	credentials map[account.Provider]ProviderCredentials
}

// NewOAuthClient builds a client over the configured provider credentials.
// A provider absent from credentials is treated as unconfigured.
func NewOAuthClient(credentials map[account.Provider]ProviderCredentials) *OAuthClient {
	return &OAuthClient{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		credentials: credentials,
	}
}

// Configured reports whether a provider has both a client id and secret set.
func (c *OAuthClient) Configured(provider account.Provider) bool {
	cred, ok := c.credentials[provider]
	return ok && cred.ClientID != "" && cred.ClientSecret != ""
}

// AuthorizationURL builds the redirect target that starts the
// authorization-code flow, embedding the caller-generated anti-CSRF state.
func (c *OAuthClient) AuthorizationURL(provider account.Provider, redirectURL, state string) (string, error) {
	cred, ok := c.credentials[provider]
	if !ok || cred.ClientID == "" {
		return "", fmt.Errorf("provider %q not configured", provider)
	}
	ep, ok := providerEndpoints[provider]
	if !ok {
		return "", fmt.Errorf("unknown provider %q", provider)
	}
	q := url.Values{
		"client_id":     {cred.ClientID},
		"redirect_uri":  {redirectURL},
		"response_type": {"code"},
		"scope":         {ep.Scope},
		"state":         {state},
	}
	return ep.AuthURL + "?" + q.Encode(), nil
}

// ExternalIdentity is the minimal profile fetched back from a provider
// after a successful code exchange.
type ExternalIdentity struct {
	ProviderAccountID string
	DisplayName       string
	Email             string
}

// Exchange trades an authorization code for an access token, then fetches
// the caller's profile, returning just the fields needed to bind or
// auto-create an account.
func (c *OAuthClient) Exchange(ctx context.Context, provider account.Provider, code, redirectURL string) (*ExternalIdentity, error) {
	cred, ok := c.credentials[provider]
	if !ok || cred.ClientID == "" {
		return nil, fmt.Errorf("provider %q not configured", provider)
	}
	ep, ok := providerEndpoints[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	accessToken, err := c.exchangeCode(ctx, ep, cred, code, redirectURL)
	if err != nil {
		return nil, err
	}
	return c.fetchIdentity(ctx, provider, ep, accessToken)
}

func (c *OAuthClient) exchangeCode(ctx context.Context, ep ProviderEndpoints, cred ProviderCredentials, code, redirectURL string) (string, error) {
	form := url.Values{
		"client_id":     {cred.ClientID},
		"client_secret": {cred.ClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {redirectURL},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxOAuthResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	var tokenData struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenData); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if tokenData.AccessToken == "" {
		return "", fmt.Errorf("token response carried no access_token")
	}
	return tokenData.AccessToken, nil
}

func (c *OAuthClient) fetchIdentity(ctx context.Context, provider account.Provider, ep ProviderEndpoints, accessToken string) (*ExternalIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.UserInfoURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxOAuthResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read userinfo response: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse userinfo response: %w", err)
	}
	return extractIdentity(provider, raw), nil
}

// extractIdentity normalizes each provider's differently-shaped profile
// payload into the common fields the identity package needs.
func extractIdentity(provider account.Provider, raw map[string]interface{}) *ExternalIdentity {
	id := &ExternalIdentity{}
	switch provider {
	case account.ProviderCodeHost:
		id.ProviderAccountID = toString(raw["id"])
		id.DisplayName = toString(raw["login"])
		id.Email = toString(raw["email"])
	case account.ProviderSearchEngine:
		id.ProviderAccountID = toString(raw["id"])
		id.DisplayName = toString(raw["name"])
		id.Email = toString(raw["email"])
	case account.ProviderGamingPlatform:
		id.ProviderAccountID = toString(raw["id"])
		id.DisplayName = toString(raw["username"])
		id.Email = toString(raw["email"])
	}
	return id
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return fmt.Sprintf("%.0f", s)
	default:
		return ""
	}
}
