package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrNoCredentials is returned when a provider has no token to offer.
var ErrNoCredentials = errors.New("no credentials available")

// tokenFetchTimeout bounds a single call to the token endpoint.
const tokenFetchTimeout = 30 * time.Second

// DefaultTokenEnvKeys are checked in order by EnvProvider.
var DefaultTokenEnvKeys = []string{"QUESTION_API_TOKEN", "AUTH_TOKEN", "ACCESS_TOKEN"}

// CredentialProvider supplies the bearer token used on every question API call.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticProvider always returns the same token.
type StaticProvider struct {
	token string
}

func NewStaticProvider(token string) *StaticProvider {
	return &StaticProvider{token: strings.TrimSpace(token)}
}

func (p *StaticProvider) Token(ctx context.Context) (string, error) {
	if p.token == "" {
		return "", ErrNoCredentials
	}
	return p.token, nil
}

// EnvProvider reads the token from the first non-empty environment variable
// of its key list. Lookups happen on every call so a rotated token is picked up.
type EnvProvider struct {
	keys   []string
	lookup func(string) (string, bool)
}

func NewEnvProvider(keys ...string) *EnvProvider {
	if len(keys) == 0 {
		keys = DefaultTokenEnvKeys
	}
	return &EnvProvider{keys: keys, lookup: os.LookupEnv}
}

func (p *EnvProvider) Token(ctx context.Context) (string, error) {
	for _, key := range p.keys {
		if value, ok := p.lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), nil
		}
	}
	return "", fmt.Errorf("%w: none of %s is set", ErrNoCredentials, strings.Join(p.keys, ", "))
}

// OAuth2Provider fetches tokens from an oauth2.TokenSource; the source caches
// and refreshes them.
type OAuth2Provider struct {
	source oauth2.TokenSource
}

func NewOAuth2Provider(source oauth2.TokenSource) *OAuth2Provider {
	return &OAuth2Provider{source: source}
}

// NewClientCredentialsProvider uses the OAuth2 client credentials grant.
func NewClientCredentialsProvider(clientID, clientSecret, tokenURL string, scopes []string) *OAuth2Provider {
	cc := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}
	httpCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: tokenFetchTimeout})
	return NewOAuth2Provider(cc.TokenSource(httpCtx))
}

type tokenResult struct {
	token *oauth2.Token
	err   error
}

// Token returns as soon as ctx is done; an in-flight fetch keeps running and
// its token is cached by the source for the next call.
func (p *OAuth2Provider) Token(ctx context.Context) (string, error) {
	done := make(chan tokenResult, 1)
	go func() {
		token, err := p.source.Token()
		done <- tokenResult{token: token, err: err}
	}()

	var res tokenResult
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("failed to obtain oauth2 token: %w", ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		return "", fmt.Errorf("failed to obtain oauth2 token: %w", res.err)
	}
	if res.token == nil || res.token.AccessToken == "" {
		return "", ErrNoCredentials
	}
	return res.token.AccessToken, nil
}

// ChainProvider asks each provider in turn and returns the first token.
type ChainProvider struct {
	providers []CredentialProvider
}

func NewChainProvider(providers ...CredentialProvider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

func (p *ChainProvider) Token(ctx context.Context) (string, error) {
	var errs []error
	for _, provider := range p.providers {
		token, err := provider.Token(ctx)
		if err == nil {
			return token, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", ErrNoCredentials
	}
	return "", errors.Join(errs...)
}

// Options select how NewProvider builds a provider.
type Options struct {
	Token        string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
	EnvKeys      []string
}

// NewProvider prefers OAuth2 client credentials when they are configured,
// then a configured static token, then the environment.
func NewProvider(opts Options) CredentialProvider {
	var providers []CredentialProvider
	if opts.ClientID != "" && opts.TokenURL != "" {
		providers = append(providers, NewClientCredentialsProvider(opts.ClientID, opts.ClientSecret, opts.TokenURL, opts.Scopes))
	}
	if opts.Token != "" {
		providers = append(providers, NewStaticProvider(opts.Token))
	}
	providers = append(providers, NewEnvProvider(opts.EnvKeys...))

	if len(providers) == 1 {
		return providers[0]
	}
	return NewChainProvider(providers...)
}
