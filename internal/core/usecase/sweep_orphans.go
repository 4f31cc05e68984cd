package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/huson-app/huson/internal/core/domain"
	"github.com/huson-app/huson/internal/core/ports"
)

// SweepOrphanUploadsUseCase deletes stored photos that no donation
// references. Uploads younger than the grace period are left alone because
// their insert may still be in flight.
type SweepOrphanUploadsUseCase struct {
	storage ports.ObjectStorage
	repo    ports.DonationRepository
	grace   time.Duration
	now     func() time.Time
}

func NewSweepOrphanUploadsUseCase(storage ports.ObjectStorage, repo ports.DonationRepository, grace time.Duration) *SweepOrphanUploadsUseCase {
	if grace <= 0 {
		grace = time.Hour
	}
	return &SweepOrphanUploadsUseCase{
		storage: storage,
		repo:    repo,
		grace:   grace,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (uc *SweepOrphanUploadsUseCase) Sweep(ctx context.Context) (domain.OrphanSweepReport, error) {
	var report domain.OrphanSweepReport

	objects, err := uc.storage.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list stored objects: %w", err)
	}

	cutoff := uc.now().Add(-uc.grace)
	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++
		if obj.ModifiedAt.After(cutoff) {
			report.Kept++
			continue
		}

		referenced, err := uc.repo.ImageKeyReferenced(ctx, obj.Key)
		if err != nil {
			report.Failed++
			slog.Warn("orphan_sweep_lookup_failed", "object_key", obj.Key, "error", err)
			continue
		}
		if referenced {
			report.Kept++
			continue
		}

		if err := uc.storage.Delete(ctx, obj.Key); err != nil {
			report.Failed++
			slog.Warn("orphan_sweep_delete_failed", "object_key", obj.Key, "error", err)
			continue
		}
		report.Deleted++
		slog.Info("orphan_upload_deleted", "object_key", obj.Key)
	}

	return report, nil
}
