package domain

import (
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// AuthSession is what a client holds after signing in.
type AuthSession struct {
	AccessToken string    `json:"access_token"`
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type SessionEventType string

const (
	SessionSignedIn  SessionEventType = "SIGNED_IN"
	SessionSignedOut SessionEventType = "SIGNED_OUT"
)

type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	UserID    string           `json:"user_id"`
	SessionID string           `json:"session_id"`
	At        time.Time        `json:"at"`
}

// DonationSubmittedEvent is published after a donation row is stored.
type DonationSubmittedEvent struct {
	DonationID string    `json:"donation_id"`
	DonorID    string    `json:"donor_id"`
	ItemType   ItemType  `json:"item_type"`
	HasImage   bool      `json:"has_image"`
	CreatedAt  time.Time `json:"created_at"`
}

const MinPasswordLength = 8

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return WrapError(ErrInvalidInput, "validate password", fmt.Errorf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// NormalizeEmail lower-cases and trims an address and checks its rough shape.
func NormalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(normalized, "@")
	if at <= 0 || at == len(normalized)-1 || strings.ContainsAny(normalized, " \t\r\n") {
		return "", WrapError(ErrInvalidInput, "validate email", fmt.Errorf("invalid email %q", email))
	}
	return normalized, nil
}
