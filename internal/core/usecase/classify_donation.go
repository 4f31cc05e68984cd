package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/huson-app/huson/internal/core/domain"
	"github.com/huson-app/huson/internal/core/ports"
)

type ClassifyDonationUseCase struct {
	images     ports.ImageProcessor
	classifier ports.ImageClassifier
}

func NewClassifyDonationUseCase(images ports.ImageProcessor, classifier ports.ImageClassifier) *ClassifyDonationUseCase {
	return &ClassifyDonationUseCase{
		images:     images,
		classifier: classifier,
	}
}

// Classify asks the remote function to label the photo and merges the label
// into the form without overwriting a value the donor already chose.
func (uc *ClassifyDonationUseCase) Classify(ctx context.Context, form domain.DonationForm, image ports.ImageUpload) (*domain.ClassifyOutcome, error) {
	if image.Body == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "classify donation", errors.New("image is required"))
	}
	data, err := io.ReadAll(image.Body)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "classify donation", errors.New("image is empty"))
	}

	prepared, mimeType, err := uc.images.PrepareForClassification(data)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "classify donation", err)
	}

	result, err := uc.classifier.ClassifyImage(ctx, dataURI(mimeType, prepared))
	if err != nil {
		return nil, fmt.Errorf("classify image: %w", err)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("classify image: %w: malformed classifier response: %v", domain.ErrUpstream, err)
	}

	return &domain.ClassifyOutcome{
		Result:            result,
		Form:              form.ApplyClassification(result),
		ConfidencePercent: result.ConfidencePercent(),
	}, nil
}

func dataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
