package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrEmailAlreadyInUse is the distinguished identity-creation failure: the
// provider's uniqueness constraint on email is the de facto idempotency key
// for concurrent provisioning of the same address.
var ErrEmailAlreadyInUse = errors.New("email already in use")

// IdentityProvider wraps the external authentication provider. The provider
// keeps a single mutable "current session": creating an identity signs the
// new identity in, clobbering whoever was signed in before. AcquireSession
// serializes use of that shared session so admin-initiated provisioning can
// treat create-identity + re-authenticate as a critical section.
type IdentityProvider interface {
	CreateIdentity(ctx context.Context, email, secret string) (string, error)
	// DeleteIdentity is best-effort; compensation logs its failure and moves on.
	DeleteIdentity(ctx context.Context, identityID string) error
	SignIn(ctx context.Context, email, secret string) (string, error)
	Reauthenticate(ctx context.Context, email, secret string) error
	AcquireSession() (release func())
}

type restIdentityProvider struct {
	client *resty.Client
	apiKey string
	logger *zap.Logger

	sessionMu sync.Mutex // exclusive use of the provider session
}

// NewRESTIdentityProvider creates an IdentityProvider over the provider's
// account REST API.
func NewRESTIdentityProvider(baseURL, apiKey string, logger *zap.Logger) IdentityProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")
	return &restIdentityProvider{
		client: client,
		apiKey: apiKey,
		logger: logger,
	}
}

type accountResponse struct {
	LocalID string `json:"localId"`
	IDToken string `json:"idToken"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *restIdentityProvider) post(ctx context.Context, path string, body map[string]any) (*accountResponse, error) {
	var out accountResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post(path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		if out.Error != nil && strings.HasPrefix(out.Error.Message, "EMAIL_EXISTS") {
			return nil, ErrEmailAlreadyInUse
		}
		msg := resp.Status()
		if out.Error != nil {
			msg = out.Error.Message
		}
		return nil, fmt.Errorf("identity provider: %s", msg)
	}
	return &out, nil
}

// CreateIdentity registers the email/secret pair. The provider signs the new
// identity in as a side effect, which is why callers hold the session guard.
func (p *restIdentityProvider) CreateIdentity(ctx context.Context, email, secret string) (string, error) {
	out, err := p.post(ctx, "/v1/accounts:signUp", map[string]any{
		"email":             email,
		"password":          secret,
		"returnSecureToken": true,
	})
	if err != nil {
		return "", err
	}
	return out.LocalID, nil
}

func (p *restIdentityProvider) DeleteIdentity(ctx context.Context, identityID string) error {
	_, err := p.post(ctx, "/v1/accounts:delete", map[string]any{
		"localId": identityID,
	})
	return err
}

func (p *restIdentityProvider) SignIn(ctx context.Context, email, secret string) (string, error) {
	out, err := p.post(ctx, "/v1/accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          secret,
		"returnSecureToken": true,
	})
	if err != nil {
		return "", err
	}
	return out.LocalID, nil
}

// Reauthenticate restores the current session to the given account. The
// admin-checkout flow calls this on every exit path after identity creation.
func (p *restIdentityProvider) Reauthenticate(ctx context.Context, email, secret string) error {
	_, err := p.SignIn(ctx, email, secret)
	if err != nil {
		p.logger.Error("failed to restore identity-provider session",
			zap.String("email", email), zap.Error(err))
	}
	return err
}

// AcquireSession blocks until the caller holds exclusive use of the provider
// session. No other authorization-sensitive call may run between identity
// creation and re-authentication, so holders must release promptly.
func (p *restIdentityProvider) AcquireSession() (release func()) {
	p.sessionMu.Lock()
	var once sync.Once
	return func() {
		once.Do(p.sessionMu.Unlock)
	}
}
