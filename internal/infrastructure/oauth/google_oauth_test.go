package oauth

import (
	"context"
	"strings"
	"testing"

	"courtbook-service/pkg/logger"
)

func TestGetTokenSource(t *testing.T) {
	t.Parallel()

	auth := NewGmailOAuth("client-id", "client-secret", "refresh-token", logger.NewNop())

	ts := auth.GetTokenSource(context.Background())
	if ts == nil {
		t.Fatal("GetTokenSource() = nil")
	}
}

func TestGenerateAuthURL(t *testing.T) {
	t.Parallel()

	auth := NewGmailOAuth("client-id", "client-secret", "", logger.NewNop())

	url := auth.GenerateAuthURL("some-state")
	for _, want := range []string{
		"client_id=client-id",
		"state=some-state",
		"access_type=offline",
		"oauth2callback",
	} {
		if !strings.Contains(url, want) {
			t.Errorf("auth URL missing %q: %s", want, url)
		}
	}
}
