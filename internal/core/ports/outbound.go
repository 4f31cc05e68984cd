package ports

import (
	"context"
	"io"
	"time"

	"github.com/huson-app/huson/internal/core/domain"
)

// DonationRepository persists and reads donations.
type DonationRepository interface {
	Create(ctx context.Context, donation *domain.Donation) error
	ListByDonor(ctx context.Context, donorID string) ([]domain.Donation, error)
	// ImageKeyReferenced reports whether any donation points at the stored
	// object key, independent of the public base URL it was served under.
	ImageKeyReferenced(ctx context.Context, key string) (bool, error)
}

// CollectionPointRepository reads collection points.
type CollectionPointRepository interface {
	ListActive(ctx context.Context) ([]domain.CollectionPoint, error)
	Upsert(ctx context.Context, point domain.CollectionPoint) error
}

// UserRepository stores auth provider accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// SessionRepository stores issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	RevokeSession(ctx context.Context, id string, at time.Time) error
}

// StoredObject describes an object in storage.
type StoredObject struct {
	Key        string
	ModifiedAt time.Time
}

// ObjectStorage stores donation photos.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	PublicURL(key string) string
	List(ctx context.Context) ([]StoredObject, error)
	Delete(ctx context.Context, key string) error
}

// ObjectReader opens a stored object for serving.
type ObjectReader interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ImageClassifier calls the remote classification function.
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, dataURI string) (domain.ClassificationResult, error)
}

// EventPublisher publishes donation lifecycle events.
type EventPublisher interface {
	PublishDonationSubmitted(ctx context.Context, event domain.DonationSubmittedEvent) error
}

// EventSubscriber consumes donation lifecycle events.
type EventSubscriber interface {
	SubscribeDonationSubmitted(ctx context.Context, handler func(context.Context, domain.DonationSubmittedEvent) error) error
}

// TokenIssuer signs and verifies session access tokens.
type TokenIssuer interface {
	Issue(session domain.Session) (string, error)
	Verify(token string) (sessionID string, userID string, err error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// SessionNotifier fans session events out to subscribers.
type SessionNotifier interface {
	Publish(event domain.SessionEvent)
}

// ImageProcessor inspects and prepares donation photos.
type ImageProcessor interface {
	Detect(data []byte) (mimeType string, err error)
	PrepareForClassification(data []byte) (prepared []byte, mimeType string, err error)
}
