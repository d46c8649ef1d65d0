package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const stateTTL = 10 * time.Minute

// GoogleProfile is the subset of the Google userinfo response the app
// needs to create or look up an account.
type GoogleProfile struct {
	GoogleID string
	Name     string
	Email    string
	Avatar   string
}

// GoogleAuthenticator drives the OAuth 2.0 authorization code flow
// against Google and fetches the user profile after the exchange.
type GoogleAuthenticator struct {
	config *oauth2.Config

	mu     sync.Mutex
	states map[string]time.Time // state -> expiry
}

// NewGoogleAuthenticator builds an authenticator from client
// credentials. redirectURL must match a redirect URI registered in the
// Google Cloud console.
func NewGoogleAuthenticator(clientID, clientSecret, redirectURL string) *GoogleAuthenticator {
	return &GoogleAuthenticator{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				oauth2api.UserinfoEmailScope,
				oauth2api.UserinfoProfileScope,
			},
			Endpoint: google.Endpoint,
		},
		states: make(map[string]time.Time),
	}
}

// AuthURL returns the Google consent page URL with a fresh state value.
// The state is remembered for a short window and consumed on callback.
func (g *GoogleAuthenticator) AuthURL() string {
	state := uuid.New().String()

	g.mu.Lock()
	g.states[state] = time.Now().Add(stateTTL)
	for s, exp := range g.states {
		if time.Now().After(exp) {
			delete(g.states, s)
		}
	}
	g.mu.Unlock()

	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// consumeState validates and removes a state value issued by AuthURL.
func (g *GoogleAuthenticator) consumeState(state string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	exp, ok := g.states[state]
	if !ok {
		return false
	}
	delete(g.states, state)
	return time.Now().Before(exp)
}

// Exchange validates the callback state, exchanges the authorization
// code for a token and fetches the user's Google profile.
func (g *GoogleAuthenticator) Exchange(ctx context.Context, state, code string) (*GoogleProfile, error) {
	if !g.consumeState(state) {
		return nil, fmt.Errorf("unknown or expired oauth state")
	}

	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(g.config.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}

	return &GoogleProfile{
		GoogleID: info.Id,
		Name:     info.Name,
		Email:    info.Email,
		Avatar:   info.Picture,
	}, nil
}
