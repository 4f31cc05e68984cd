package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/huson-app/huson/internal/core/domain"
	"github.com/huson-app/huson/internal/core/ports"
)

// ParseCollectionPoints reads a YAML document of the form
//
//	collection_points:
//	  - id: cp-1
//	    name: ...
//
// Points default to active unless is_active is set explicitly.
func ParseCollectionPoints(r io.Reader) ([]domain.CollectionPoint, error) {
	var raw struct {
		CollectionPoints []yaml.Node `yaml:"collection_points"`
	}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed yaml: %w", err)
	}

	points := make([]domain.CollectionPoint, 0, len(raw.CollectionPoints))
	for i, node := range raw.CollectionPoints {
		point := domain.CollectionPoint{IsActive: true}
		if err := node.Decode(&point); err != nil {
			return nil, fmt.Errorf("decode collection point %d: %w", i, err)
		}
		if err := validatePoint(point); err != nil {
			return nil, fmt.Errorf("collection point %d: %w", i, err)
		}
		points = append(points, point)
	}
	return points, nil
}

func validatePoint(p domain.CollectionPoint) error {
	if strings.TrimSpace(p.ID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate collection point", errors.New("id is required"))
	}
	if strings.TrimSpace(p.Name) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate collection point", errors.New("name is required"))
	}
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return domain.WrapError(domain.ErrInvalidInput, "validate collection point", fmt.Errorf("coordinates out of range: %v,%v", p.Latitude, p.Longitude))
	}
	return nil
}

// LoadCollectionPoints upserts every point in the file. A missing path is
// not an error; seeding is optional.
func LoadCollectionPoints(ctx context.Context, path string, repo ports.CollectionPointRepository) (int, error) {
	if strings.TrimSpace(path) == "" {
		return 0, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("collection_points_seed_missing", "path", path)
			return 0, nil
		}
		return 0, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	points, err := ParseCollectionPoints(f)
	if err != nil {
		return 0, err
	}
	for _, p := range points {
		if err := repo.Upsert(ctx, p); err != nil {
			return 0, fmt.Errorf("seed collection point %s: %w", p.ID, err)
		}
	}
	slog.Info("collection_points_seeded", "path", path, "count", len(points))
	return len(points), nil
}
