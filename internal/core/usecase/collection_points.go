package usecase

import (
	"context"
	"fmt"

	"github.com/huson-app/huson/internal/core/domain"
	"github.com/huson-app/huson/internal/core/ports"
)

type MapSettings struct {
	CenterLat float64
	CenterLng float64
	Zoom      int
	TileURL   string
}

type CollectionPointsUseCase struct {
	repo ports.CollectionPointRepository
	maps MapSettings
}

func NewCollectionPointsUseCase(repo ports.CollectionPointRepository, maps MapSettings) *CollectionPointsUseCase {
	return &CollectionPointsUseCase{repo: repo, maps: maps}
}

func (uc *CollectionPointsUseCase) ListActive(ctx context.Context) ([]domain.CollectionPoint, error) {
	points, err := uc.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collection points: %w", err)
	}
	if points == nil {
		points = []domain.CollectionPoint{}
	}
	return points, nil
}

func (uc *CollectionPointsUseCase) Cards(ctx context.Context) ([]domain.CollectionPointCard, error) {
	points, err := uc.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	cards := make([]domain.CollectionPointCard, 0, len(points))
	for _, p := range points {
		cards = append(cards, toCard(p))
	}
	return cards, nil
}

func (uc *CollectionPointsUseCase) Map(ctx context.Context) (*domain.CollectionPointMap, error) {
	points, err := uc.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	markers := make([]domain.CollectionPointMarker, 0, len(points))
	for _, p := range points {
		markers = append(markers, domain.CollectionPointMarker{
			Position: [2]float64{p.Latitude, p.Longitude},
			Point:    toCard(p),
		})
	}
	return &domain.CollectionPointMap{
		Center:  [2]float64{uc.maps.CenterLat, uc.maps.CenterLng},
		Zoom:    uc.maps.Zoom,
		TileURL: uc.maps.TileURL,
		Markers: markers,
	}, nil
}

func toCard(p domain.CollectionPoint) domain.CollectionPointCard {
	return domain.CollectionPointCard{
		CollectionPoint: p,
		TypeLabel:       domain.TypeLabel(p.Type),
		TypeColor:       domain.TypeColor(p.Type),
	}
}
