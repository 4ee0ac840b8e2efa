package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mlbahja/01-blog/internal/audit"
	"github.com/mlbahja/01-blog/internal/domain/user"
	"github.com/mlbahja/01-blog/internal/repository"
	apperrors "github.com/mlbahja/01-blog/pkg/errors"
	"github.com/mlbahja/01-blog/pkg/password"
	"github.com/mlbahja/01-blog/pkg/validator"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the slice of user storage the Authenticator needs.
type Store interface {
	repository.CredentialStore
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	Token *IssuedToken
	// ExpiresIn is the configured token lifetime.
	ExpiresIn time.Duration
	User      user.View
}

type Option func(*Authenticator)

func WithThrottle(t LoginThrottle) Option {
	return func(a *Authenticator) {
		if t != nil {
			a.throttle = t
		}
	}
}

func WithRecorder(r audit.Recorder) Option {
	return func(a *Authenticator) {
		if r != nil {
			a.recorder = r
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(a *Authenticator) {
		a.logger = l
	}
}

// Authenticator verifies credentials, registers accounts and issues tokens.
type Authenticator struct {
	store    Store
	hasher   password.Hasher
	tokens   *TokenCodec
	guard    *timingGuard
	throttle LoginThrottle
	recorder audit.Recorder
	logger   zerolog.Logger
}

func NewAuthenticator(store Store, hasher password.Hasher, tokens *TokenCodec, opts ...Option) (*Authenticator, error) {
	guard, err := newTimingGuard(hasher)
	if err != nil {
		return nil, err
	}

	a := &Authenticator{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		guard:    guard,
		throttle: noopThrottle{},
		recorder: audit.Nop{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Login resolves identifier as an email first and falls back to a username.
// Every credential failure returns the same InvalidCredentials error.
func (a *Authenticator) Login(ctx context.Context, identifier, plaintext string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	throttleKey := strings.ToLower(identifier)

	allowed, err := a.throttle.Allowed(ctx, throttleKey)
	if err != nil {
		a.logger.Warn().Err(err).Msg("login throttle unavailable")
	} else if !allowed {
		a.record(ctx, &audit.Event{Type: audit.EventLoginThrottled, Status: audit.StatusDenied, Subject: identifier})
		return nil, apperrors.TooManyAttempts()
	}

	u, err := a.resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if u == nil {
		a.guard.burn(plaintext)
		return nil, a.loginFailed(ctx, throttleKey, identifier, nil, "unknown identifier")
	}

	if !a.hasher.Verify(plaintext, u.PasswordHash) {
		return nil, a.loginFailed(ctx, throttleKey, identifier, &u.ID, "wrong password")
	}

	if u.IsBanned() {
		return nil, a.loginFailed(ctx, throttleKey, identifier, &u.ID, "banned")
	}

	if err := a.throttle.Reset(ctx, throttleKey); err != nil {
		a.logger.Warn().Err(err).Msg("failed to reset login throttle")
	}

	token, err := a.tokens.Issue(u.Username)
	if err != nil {
		return nil, apperrors.InternalServer(msgIssueTokenFailed, err)
	}

	a.rehashIfNeeded(ctx, u, plaintext)
	a.record(ctx, &audit.Event{Type: audit.EventLoginSuccess, Status: audit.StatusSuccess, Subject: u.Username, ActorID: &u.ID})

	return &LoginResult{Token: token, ExpiresIn: a.tokens.TTL(), User: u.View()}, nil
}

func (a *Authenticator) resolve(ctx context.Context, identifier string) (*user.User, error) {
	if identifier == "" {
		return nil, nil
	}

	u, err := a.store.FindByEmail(ctx, identifier)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.InternalServer(msgUserLookupFailed, err)
	}

	u, err = a.store.FindByUsername(ctx, identifier)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.InternalServer(msgUserLookupFailed, err)
	}
	return nil, nil
}

func (a *Authenticator) loginFailed(ctx context.Context, throttleKey, identifier string, actor *uuid.UUID, reason string) error {
	if err := a.throttle.RecordFailure(ctx, throttleKey); err != nil {
		a.logger.Warn().Err(err).Msg("failed to record login failure")
	}
	a.record(ctx, &audit.Event{
		Type:     audit.EventLoginFailure,
		Status:   audit.StatusFailure,
		Subject:  identifier,
		ActorID:  actor,
		Metadata: map[string]any{"reason": reason},
	})
	return apperrors.InvalidCredentials()
}

func (a *Authenticator) rehashIfNeeded(ctx context.Context, u *user.User, plaintext string) {
	if !a.hasher.NeedsRehash(u.PasswordHash) {
		return
	}
	hash, err := a.hasher.Hash(plaintext)
	if err != nil {
		a.logger.Warn().Err(err).Str("username", u.Username).Msg("password rehash failed")
		return
	}
	if err := a.store.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		a.logger.Warn().Err(err).Str("username", u.Username).Msg("failed to store rehashed password")
	}
}

// Register creates a USER account. Duplicate email or username is reported
// before any hashing or store write.
func (a *Authenticator) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	reg := validator.Registration{Username: in.Username, Email: in.Email, Password: in.Password}
	if err := reg.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	if err := a.ensureAvailable(ctx, in.Email, in.Username); err != nil {
		return nil, err
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.InternalServer(msgHashPasswordFailed, err)
	}

	saved, err := a.store.Save(ctx, &user.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         user.DefaultRole,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		return nil, apperrors.InternalServer(msgCreateUserFailed, err)
	}

	a.record(ctx, &audit.Event{Type: audit.EventRegister, Status: audit.StatusSuccess, Subject: saved.Username, ActorID: &saved.ID})
	return saved, nil
}

func (a *Authenticator) ensureAvailable(ctx context.Context, email, username string) error {
	_, err := a.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return apperrors.DuplicateEmail()
	case !errors.Is(err, apperrors.ErrNotFound):
		return apperrors.InternalServer(msgUserLookupFailed, err)
	}

	_, err = a.store.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return apperrors.DuplicateUsername()
	case !errors.Is(err, apperrors.ErrNotFound):
		return apperrors.InternalServer(msgUserLookupFailed, err)
	}

	return nil
}

// ChangePassword replaces the principal's password after re-checking the current one.
func (a *Authenticator) ChangePassword(ctx context.Context, p Principal, current, next string) error {
	u, err := a.store.FindByUsername(ctx, p.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Unauthenticated(msgAuthenticationRequired)
		}
		return apperrors.InternalServer(msgUserLookupFailed, err)
	}

	if !a.hasher.Verify(current, u.PasswordHash) {
		return apperrors.InvalidCredentials()
	}

	if err := validator.Password(next); err != nil {
		return apperrors.Validation("new password: " + err.Error())
	}

	hash, err := a.hasher.Hash(next)
	if err != nil {
		return apperrors.InternalServer(msgHashPasswordFailed, err)
	}

	if err := a.store.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return apperrors.InternalServer(msgUpdatePasswordFailed, err)
	}

	a.record(ctx, &audit.Event{Type: audit.EventPasswordChange, Status: audit.StatusSuccess, Subject: u.Username, ActorID: &u.ID})
	return nil
}

func (a *Authenticator) record(ctx context.Context, event *audit.Event) {
	if err := a.recorder.Record(ctx, event); err != nil {
		a.logger.Error().Err(err).Str("event_type", string(event.Type)).Msg("failed to record audit event")
	}
}
