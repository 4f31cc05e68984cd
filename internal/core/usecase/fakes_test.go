package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/huson-app/huson/internal/core/domain"
	"github.com/huson-app/huson/internal/core/ports"
)

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.calls = append(l.calls, call)
	l.mu.Unlock()
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type donationRepoFake struct {
	log        *callLog
	created    []domain.Donation
	listed     []domain.Donation
	referenced map[string]bool
	lookups    []string
	err        error
	listErr    error
	listCalls  int
}

func (f *donationRepoFake) Create(_ context.Context, donation *domain.Donation) error {
	f.log.add("insert")
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *donation)
	return nil
}

func (f *donationRepoFake) ListByDonor(context.Context, string) ([]domain.Donation, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listed, nil
}

func (f *donationRepoFake) ImageKeyReferenced(_ context.Context, key string) (bool, error) {
	f.lookups = append(f.lookups, key)
	if f.err != nil {
		return false, f.err
	}
	return f.referenced[key], nil
}

type storageFake struct {
	log     *callLog
	saved   map[string]string
	objects []ports.StoredObject
	deleted []string
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *storageFake) Save(ctx context.Context, key string, data io.Reader) error {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.log.add("upload")
	if f.err != nil {
		return f.err
	}
	if _, exists := f.saved[key]; exists {
		return domain.WrapError(domain.ErrConflict, "save object", errors.New("object exists"))
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.saved == nil {
		f.saved = make(map[string]string)
	}
	f.saved[key] = string(raw)
	return nil
}

func (f *storageFake) PublicURL(key string) string {
	return "http://cdn.test/storage/donations/" + key
}

func (f *storageFake) List(context.Context) ([]ports.StoredObject, error) {
	return f.objects, nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type imagesFake struct {
	err error
}

func (f imagesFake) Detect(data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if strings.HasPrefix(string(data), "PNG") {
		return "image/png", nil
	}
	return "image/jpeg", nil
}

func (f imagesFake) PrepareForClassification(data []byte) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return data, "image/jpeg", nil
}

type publisherFake struct {
	events []domain.DonationSubmittedEvent
	err    error
}

func (f *publisherFake) PublishDonationSubmitted(_ context.Context, event domain.DonationSubmittedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type classifierFake struct {
	dataURI string
	calls   int
	result  domain.ClassificationResult
	err     error
}

func (f *classifierFake) ClassifyImage(_ context.Context, dataURI string) (domain.ClassificationResult, error) {
	f.calls++
	f.dataURI = dataURI
	if f.err != nil {
		return domain.ClassificationResult{}, f.err
	}
	return f.result, nil
}

type userRepoFake struct {
	byEmail map[string]*domain.User
}

func (f *userRepoFake) CreateUser(_ context.Context, user *domain.User) error {
	if f.byEmail == nil {
		f.byEmail = make(map[string]*domain.User)
	}
	copyUser := *user
	f.byEmail[user.Email] = &copyUser
	return nil
}

func (f *userRepoFake) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get user", errors.New(email))
	}
	return user, nil
}

type sessionRepoFake struct {
	byID map[string]*domain.Session
}

func (f *sessionRepoFake) CreateSession(_ context.Context, session *domain.Session) error {
	if f.byID == nil {
		f.byID = make(map[string]*domain.Session)
	}
	copySession := *session
	f.byID[session.ID] = &copySession
	return nil
}

func (f *sessionRepoFake) GetSession(_ context.Context, id string) (*domain.Session, error) {
	session, ok := f.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get session", errors.New(id))
	}
	copySession := *session
	return &copySession, nil
}

func (f *sessionRepoFake) RevokeSession(_ context.Context, id string, at time.Time) error {
	session, ok := f.byID[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "revoke session", errors.New(id))
	}
	session.RevokedAt = &at
	return nil
}

type tokensFake struct{}

func (tokensFake) Issue(session domain.Session) (string, error) {
	return "tok|" + session.ID + "|" + session.UserID, nil
}

func (tokensFake) Verify(token string) (string, string, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 3 || parts[0] != "tok" {
		return "", "", errors.New("bad token")
	}
	return parts[1], parts[2], nil
}

type hasherFake struct{}

func (hasherFake) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (hasherFake) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type notifierFake struct {
	events []domain.SessionEvent
}

func (f *notifierFake) Publish(event domain.SessionEvent) {
	f.events = append(f.events, event)
}

type collectionPointRepoFake struct {
	points []domain.CollectionPoint
	calls  int
}

func (f *collectionPointRepoFake) ListActive(context.Context) ([]domain.CollectionPoint, error) {
	f.calls++
	out := make([]domain.CollectionPoint, len(f.points))
	copy(out, f.points)
	return out, nil
}

func (f *collectionPointRepoFake) Upsert(_ context.Context, point domain.CollectionPoint) error {
	f.points = append(f.points, point)
	return nil
}
