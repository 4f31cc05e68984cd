package httpadapter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/huson-app/huson/internal/config"
	"github.com/huson-app/huson/internal/core/domain"
	"github.com/huson-app/huson/internal/core/ports"
	"github.com/huson-app/huson/internal/session"
)

const validToken = "token-ok"

var testSession = &domain.Session{
	ID:        "sess-1",
	UserID:    "user-1",
	CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
}

type authFake struct {
	mu         sync.Mutex
	signInErr  error
	currentErr error
	signedOut  []string
	lookups    int
}

func (f *authFake) SignUp(_ context.Context, email, _ string) (*domain.AuthSession, error) {
	return &domain.AuthSession{AccessToken: validToken, SessionID: testSession.ID, UserID: testSession.UserID, Email: email, ExpiresAt: testSession.ExpiresAt}, nil
}

func (f *authFake) SignIn(_ context.Context, email, _ string) (*domain.AuthSession, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &domain.AuthSession{AccessToken: validToken, SessionID: testSession.ID, UserID: testSession.UserID, Email: email, ExpiresAt: testSession.ExpiresAt}, nil
}

func (f *authFake) SignOut(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut = append(f.signedOut, sessionID)
	return nil
}

func (f *authFake) CurrentSession(_ context.Context, token string) (*domain.Session, error) {
	f.mu.Lock()
	f.lookups++
	f.mu.Unlock()
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	if token != validToken {
		return nil, domain.WrapError(domain.ErrUnauthorized, "current session", errors.New("invalid token"))
	}
	sess := *testSession
	return &sess, nil
}

type classifierFake struct {
	calls   int
	outcome *domain.ClassifyOutcome
	err     error
}

func (f *classifierFake) Classify(_ context.Context, form domain.DonationForm, image ports.ImageUpload) (*domain.ClassifyOutcome, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.ReadAll(image.Body); err != nil {
		return nil, err
	}
	if f.outcome != nil {
		return f.outcome, nil
	}
	return &domain.ClassifyOutcome{Form: form}, nil
}

type submitterFake struct {
	calls          int
	donorID        string
	form           domain.DonationForm
	imageName      string
	imageBody      string
	classification *domain.ClassificationResult
	err            error
}

func (f *submitterFake) Submit(_ context.Context, donorID string, form domain.DonationForm, image *ports.ImageUpload, classification *domain.ClassificationResult) (*domain.SubmissionResult, error) {
	f.calls++
	f.donorID = donorID
	f.form = form
	f.classification = classification
	if image != nil {
		f.imageName = image.Filename
		body, err := io.ReadAll(image.Body)
		if err != nil {
			return nil, err
		}
		f.imageBody = string(body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SubmissionResult{
		Donation: &domain.Donation{ID: "don-1", DonorID: donorID, Status: domain.DonationStatusPending},
		State:    domain.SubmissionDone,
		Trace:    []domain.SubmissionState{domain.SubmissionIdle, domain.SubmissionUploading, domain.SubmissionInserting, domain.SubmissionDone},
		Redirect: "/dashboard",
	}, nil
}

type historyFake struct {
	calls   int
	donorID string
	history *domain.DonationHistory
	err     error
}

func (f *historyFake) History(_ context.Context, donorID string) (*domain.DonationHistory, error) {
	f.calls++
	f.donorID = donorID
	if f.err != nil {
		return nil, f.err
	}
	if f.history != nil {
		return f.history, nil
	}
	return &domain.DonationHistory{Donations: []domain.Donation{}}, nil
}

type pointsFake struct {
	calls int
	err   error
}

func (f *pointsFake) ListActive(context.Context) ([]domain.CollectionPoint, error) {
	f.calls++
	return []domain.CollectionPoint{}, f.err
}

func (f *pointsFake) Cards(context.Context) ([]domain.CollectionPointCard, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []domain.CollectionPointCard{{
		CollectionPoint: domain.CollectionPoint{ID: "cp-1", Name: "Central Pantry", Type: "food_bank"},
		TypeLabel:       "Food Bank",
		TypeColor:       "success",
	}}, nil
}

func (f *pointsFake) Map(context.Context) (*domain.CollectionPointMap, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CollectionPointMap{Center: [2]float64{28.6, 77.2}, Zoom: 12, TileURL: "https://tiles/{z}/{x}/{y}.png", Markers: []domain.CollectionPointMarker{}}, nil
}

type objectsFake struct {
	objects map[string]string
}

func (f objectsFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	body, ok := f.objects[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "open object", errors.New(key))
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type testServices struct {
	auth       *authFake
	classifier *classifierFake
	submitter  *submitterFake
	history    *historyFake
	points     *pointsFake
	hub        *session.Hub
}

func newTestServices() *testServices {
	return &testServices{
		auth:       &authFake{},
		classifier: &classifierFake{},
		submitter:  &submitterFake{},
		history:    &historyFake{},
		points:     &pointsFake{},
		hub:        session.NewHub(),
	}
}

func (s *testServices) handler(cfg config.Config) http.Handler {
	return NewRouter(cfg, Services{
		Auth:       s.auth,
		Sessions:   s.hub,
		Classifier: s.classifier,
		Submitter:  s.submitter,
		History:    s.history,
		Points:     s.points,
		Objects:    objectsFake{objects: map[string]string{"user-1/1700000000000.jpg": "jpeg-bytes"}},
	}, nil).Handler()
}

func newTestHandler(cfg config.Config) http.Handler {
	return newTestServices().handler(cfg)
}
