package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/huson-app/huson/internal/core/domain"
	"github.com/huson-app/huson/internal/core/ports"
)

const dashboardPath = "/dashboard"

// SubmissionError reports the pipeline state a submission failed in.
type SubmissionError struct {
	State domain.SubmissionState
	Trace []domain.SubmissionState
	Err   error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("donation submission failed while %s: %v", e.State, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

type SubmitDonationUseCase struct {
	repo      ports.DonationRepository
	storage   ports.ObjectStorage
	images    ports.ImageProcessor
	publisher ports.EventPublisher
	now       func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewSubmitDonationUseCase(
	repo ports.DonationRepository,
	storage ports.ObjectStorage,
	images ports.ImageProcessor,
	publisher ports.EventPublisher,
) *SubmitDonationUseCase {
	return &SubmitDonationUseCase{
		repo:      repo,
		storage:   storage,
		images:    images,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
		inFlight:  make(map[string]struct{}),
	}
}

func (uc *SubmitDonationUseCase) Submit(
	ctx context.Context,
	donorID string,
	form domain.DonationForm,
	image *ports.ImageUpload,
	classification *domain.ClassificationResult,
) (*domain.SubmissionResult, error) {
	donorID = strings.TrimSpace(donorID)
	if donorID == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "submit donation", errors.New("no signed-in donor"))
	}

	input, err := form.Validate()
	if err != nil {
		return nil, err
	}
	if classification != nil {
		if err := classification.Validate(); err != nil {
			return nil, err
		}
	}

	if !uc.acquire(donorID) {
		return nil, domain.WrapError(domain.ErrConflict, "submit donation", errors.New("a submission is already in progress"))
	}
	defer uc.release(donorID)

	run := &submissionRun{donorID: donorID, trace: []domain.SubmissionState{domain.SubmissionIdle}}

	run.transition(domain.SubmissionUploading)
	var imageURL, imageKey *string
	if image != nil {
		key, err := uc.upload(ctx, donorID, *image)
		if err != nil {
			return nil, run.fail(err)
		}
		run.objectKey = key
		url := uc.storage.PublicURL(key)
		imageURL = &url
		imageKey = &key
	}

	run.transition(domain.SubmissionInserting)
	donation := &domain.Donation{
		ID:                   uuid.NewString(),
		DonorID:              donorID,
		ItemType:             input.ItemType,
		ItemName:             input.ItemName,
		Quantity:             input.Quantity,
		Unit:                 input.Unit,
		Description:          input.Description,
		PickupLocation:       input.PickupLocation,
		ExpiryDate:           input.ExpiryDate,
		ImageURL:             imageURL,
		ImageKey:             imageKey,
		ClassificationResult: classification,
		Status:               domain.DonationStatusPending,
		CreatedAt:            uc.now(),
	}
	if classification != nil {
		donation.FreshnessScore = classification.FreshnessScore
		donation.ConditionScore = classification.ConditionScore
	}

	if err := uc.repo.Create(ctx, donation); err != nil {
		if run.objectKey != "" {
			slog.Warn("donation_upload_orphaned", "donor_id", donorID, "object_key", run.objectKey)
		}
		return nil, run.fail(fmt.Errorf("insert donation: %w", err))
	}

	run.transition(domain.SubmissionDone)
	uc.publishSubmitted(ctx, donation)

	return &domain.SubmissionResult{
		Donation:  donation,
		State:     domain.SubmissionDone,
		Trace:     run.trace,
		ObjectKey: run.objectKey,
		Redirect:  dashboardPath,
	}, nil
}

func (uc *SubmitDonationUseCase) upload(ctx context.Context, donorID string, image ports.ImageUpload) (string, error) {
	if image.Body == nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "upload donation image", errors.New("image body is empty"))
	}
	data, err := io.ReadAll(image.Body)
	if err != nil {
		return "", fmt.Errorf("read donation image: %w", err)
	}
	if len(data) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "upload donation image", errors.New("image body is empty"))
	}
	mimeType, err := uc.images.Detect(data)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "upload donation image", err)
	}

	at := uc.now()
	key := objectKey(donorID, at, "", image.Filename, mimeType)
	err = uc.storage.Save(ctx, key, bytes.NewReader(data))
	if domain.IsKind(err, domain.ErrConflict) {
		// Same donor, same millisecond.
		key = objectKey(donorID, at, uuid.NewString()[:8], image.Filename, mimeType)
		err = uc.storage.Save(ctx, key, bytes.NewReader(data))
	}
	if err != nil {
		return "", fmt.Errorf("save to object storage: %w", err)
	}
	return key, nil
}

func (uc *SubmitDonationUseCase) publishSubmitted(ctx context.Context, donation *domain.Donation) {
	if uc.publisher == nil {
		return
	}
	event := domain.DonationSubmittedEvent{
		DonationID: donation.ID,
		DonorID:    donation.DonorID,
		ItemType:   donation.ItemType,
		HasImage:   donation.ImageURL != nil,
		CreatedAt:  donation.CreatedAt,
	}
	if err := uc.publisher.PublishDonationSubmitted(ctx, event); err != nil {
		slog.Warn("donation_event_publish_failed", "donation_id", donation.ID, "error", err)
	}
}

func (uc *SubmitDonationUseCase) acquire(donorID string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, busy := uc.inFlight[donorID]; busy {
		return false
	}
	uc.inFlight[donorID] = struct{}{}
	return true
}

func (uc *SubmitDonationUseCase) release(donorID string) {
	uc.mu.Lock()
	delete(uc.inFlight, donorID)
	uc.mu.Unlock()
}

type submissionRun struct {
	donorID   string
	objectKey string
	trace     []domain.SubmissionState
}

func (r *submissionRun) current() domain.SubmissionState {
	return r.trace[len(r.trace)-1]
}

func (r *submissionRun) transition(to domain.SubmissionState) {
	slog.Debug("donation_submission_state", "donor_id", r.donorID, "from", r.current(), "to", to)
	r.trace = append(r.trace, to)
}

func (r *submissionRun) fail(err error) error {
	failedIn := r.current()
	r.transition(domain.SubmissionFailed)
	return &SubmissionError{State: failedIn, Trace: r.trace, Err: err}
}

// objectKey builds {donor_id}/{unix_millis}.{ext}.
func objectKey(donorID string, at time.Time, suffix, filename, mimeType string) string {
	name := strconv.FormatInt(at.UnixMilli(), 10)
	if suffix != "" {
		name += "-" + suffix
	}
	return fmt.Sprintf("%s/%s.%s", sanitizeSegment(donorID), name, imageExtension(filename, mimeType))
}

var extensionsByMIME = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

func imageExtension(filename, mimeType string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filepath.Base(filename)), "."))
	ext = sanitizeSegment(ext)
	if strings.Trim(ext, "_") != "" && len(ext) <= 8 {
		return ext
	}
	if fromMIME, ok := extensionsByMIME[mimeType]; ok {
		return fromMIME
	}
	return "bin"
}

func sanitizeSegment(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
