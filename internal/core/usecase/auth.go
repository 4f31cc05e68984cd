package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/huson-app/huson/internal/core/domain"
	"github.com/huson-app/huson/internal/core/ports"
)

var errInvalidCredentials = errors.New("invalid email or password")

type AuthUseCase struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	tokens   ports.TokenIssuer
	hasher   ports.PasswordHasher
	notifier ports.SessionNotifier
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthUseCase(
	users ports.UserRepository,
	sessions ports.SessionRepository,
	tokens ports.TokenIssuer,
	hasher ports.PasswordHasher,
	notifier ports.SessionNotifier,
	ttl time.Duration,
) *AuthUseCase {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &AuthUseCase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		notifier: notifier,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *AuthUseCase) SignUp(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := uc.users.GetUserByEmail(ctx, normalized)
	switch {
	case err == nil && existing != nil:
		return nil, domain.WrapError(domain.ErrConflict, "sign up", errors.New("email already registered"))
	case err != nil && !domain.IsKind(err, domain.ErrNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        normalized,
		PasswordHash: hash,
		CreatedAt:    uc.now(),
	}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return uc.startSession(ctx, user)
}

func (uc *AuthUseCase) SignIn(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "sign in", errInvalidCredentials)
	}

	user, err := uc.users.GetUserByEmail(ctx, normalized)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, domain.WrapError(domain.ErrUnauthorized, "sign in", errInvalidCredentials)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := uc.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "sign in", errInvalidCredentials)
	}

	return uc.startSession(ctx, user)
}

func (uc *AuthUseCase) SignOut(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return domain.WrapError(domain.ErrUnauthorized, "sign out", errors.New("no active session"))
	}
	session, err := uc.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return domain.WrapError(domain.ErrUnauthorized, "sign out", err)
		}
		return fmt.Errorf("load session: %w", err)
	}
	now := uc.now()
	if err := uc.sessions.RevokeSession(ctx, sessionID, now); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	uc.notify(domain.SessionEvent{
		Type:      domain.SessionSignedOut,
		UserID:    session.UserID,
		SessionID: session.ID,
		At:        now,
	})
	return nil
}

// CurrentSession resolves an access token to a live session. Any failure is
// reported as ErrUnauthorized so callers can treat it as "signed out".
func (uc *AuthUseCase) CurrentSession(ctx context.Context, accessToken string) (*domain.Session, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "current session", errors.New("no access token"))
	}
	sessionID, userID, err := uc.tokens.Verify(accessToken)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "current session", err)
	}

	session, err := uc.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, domain.WrapError(domain.ErrUnauthorized, "current session", err)
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.UserID != userID {
		return nil, domain.WrapError(domain.ErrUnauthorized, "current session", errors.New("token does not match session"))
	}
	if !session.Active(uc.now()) {
		return nil, domain.WrapError(domain.ErrUnauthorized, "current session", errors.New("session expired or revoked"))
	}
	return session, nil
}

func (uc *AuthUseCase) startSession(ctx context.Context, user *domain.User) (*domain.AuthSession, error) {
	now := uc.now()
	session := domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	if err := uc.sessions.CreateSession(ctx, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	token, err := uc.tokens.Issue(session)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	uc.notify(domain.SessionEvent{
		Type:      domain.SessionSignedIn,
		UserID:    user.ID,
		SessionID: session.ID,
		At:        now,
	})

	return &domain.AuthSession{
		AccessToken: token,
		SessionID:   session.ID,
		UserID:      user.ID,
		Email:       user.Email,
		ExpiresAt:   session.ExpiresAt,
	}, nil
}

func (uc *AuthUseCase) notify(event domain.SessionEvent) {
	if uc.notifier != nil {
		uc.notifier.Publish(event)
	}
}
