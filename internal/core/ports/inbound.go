package ports

import (
	"context"
	"io"

	"github.com/huson-app/huson/internal/core/domain"
)

// ImageUpload is a single image received from a donor.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// DonationSubmitter is the inbound contract for the submission pipeline.
type DonationSubmitter interface {
	Submit(ctx context.Context, donorID string, form domain.DonationForm, image *ImageUpload, classification *domain.ClassificationResult) (*domain.SubmissionResult, error)
}

// DonationClassifier is the inbound contract for AI-assisted form filling.
type DonationClassifier interface {
	Classify(ctx context.Context, form domain.DonationForm, image ImageUpload) (*domain.ClassifyOutcome, error)
}

// DonationHistory is the inbound read model for a donor's dashboard.
type DonationHistory interface {
	History(ctx context.Context, donorID string) (*domain.DonationHistory, error)
}

// CollectionPointLister lists active collection points.
type CollectionPointLister interface {
	ListActive(ctx context.Context) ([]domain.CollectionPoint, error)
}

// CollectionPointViews renders active collection points as list cards or
// map markers.
type CollectionPointViews interface {
	CollectionPointLister
	Cards(ctx context.Context) ([]domain.CollectionPointCard, error)
	Map(ctx context.Context) (*domain.CollectionPointMap, error)
}

// Authenticator is the inbound contract of the auth provider.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (*domain.AuthSession, error)
	SignIn(ctx context.Context, email, password string) (*domain.AuthSession, error)
	SignOut(ctx context.Context, sessionID string) error
	CurrentSession(ctx context.Context, accessToken string) (*domain.Session, error)
}

// SessionEvents lets a caller follow sign-in/sign-out for its mounted lifetime.
type SessionEvents interface {
	Subscribe(userID string) (<-chan domain.SessionEvent, func())
}
