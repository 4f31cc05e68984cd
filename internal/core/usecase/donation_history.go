package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huson-app/huson/internal/core/domain"
	"github.com/huson-app/huson/internal/core/ports"
)

type DonationHistoryUseCase struct {
	repo ports.DonationRepository
}

func NewDonationHistoryUseCase(repo ports.DonationRepository) *DonationHistoryUseCase {
	return &DonationHistoryUseCase{repo: repo}
}

func (uc *DonationHistoryUseCase) History(ctx context.Context, donorID string) (*domain.DonationHistory, error) {
	if strings.TrimSpace(donorID) == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "donation history", errors.New("no signed-in donor"))
	}
	donations, err := uc.repo.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	if donations == nil {
		donations = []domain.Donation{}
	}
	return &domain.DonationHistory{
		Donations: donations,
		Stats:     domain.SummarizeDonations(donations),
	}, nil
}
