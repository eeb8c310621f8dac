package identity

import (
	"testing"

	"github.com/sectorwars2102/gameserver/internal/domain/account"
)

func TestOAuthClientConfigured(t *testing.T) {
	c := NewOAuthClient(map[account.Provider]ProviderCredentials{
		account.ProviderCodeHost: {ClientID: "id", ClientSecret: "secret"},
	})
	if !c.Configured(account.ProviderCodeHost) {
		t.Fatal("expected code-host provider to be configured")
	}
	if c.Configured(account.ProviderSearchEngine) {
		t.Fatal("did not expect search-engine provider to be configured")
	}
}

func TestOAuthClientAuthorizationURL(t *testing.T) {
	c := NewOAuthClient(map[account.Provider]ProviderCredentials{
		account.ProviderCodeHost: {ClientID: "client-id", ClientSecret: "secret"},
	})
	urlStr, err := c.AuthorizationURL(account.ProviderCodeHost, "https://example.test/callback", "state-123")
	if err != nil {
		t.Fatalf("AuthorizationURL: %v", err)
	}
	if urlStr == "" {
		t.Fatal("expected a non-empty authorization URL")
	}
}

func TestOAuthClientAuthorizationURLUnconfigured(t *testing.T) {
	c := NewOAuthClient(nil)
	if _, err := c.AuthorizationURL(account.ProviderCodeHost, "https://example.test/callback", "state"); err == nil {
		t.Fatal("expected an error for an unconfigured provider")
	}
}

func TestExtractIdentity(t *testing.T) {
	id := extractIdentity(account.ProviderCodeHost, map[string]interface{}{
		"id":    float64(42),
		"login": "captain",
		"email": "captain@example.com",
	})
	if id.ProviderAccountID != "42" || id.DisplayName != "captain" || id.Email != "captain@example.com" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}
