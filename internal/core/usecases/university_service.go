package usecases

import (
	"context"
	"encoding/json"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/ports"
)

// UniversityService serves the campus catalog. The catalog is small and
// nearly static, so reads are cached aggressively.
type UniversityService struct {
	universities ports.UniversityRepository
	cache        ports.CacheService
}

// NewUniversityService creates a new UniversityService.
func NewUniversityService(universities ports.UniversityRepository, cache ports.CacheService) *UniversityService {
	return &UniversityService{universities: universities, cache: cache}
}

// List returns all universities.
func (s *UniversityService) List(ctx context.Context) ([]domain.University, error) {
	cacheKey := "universities:all"
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var out []domain.University
			if err := json.Unmarshal(data, &out); err == nil {
				return out, nil
			}
		}
	}

	out, err := s.universities.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(out); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600)
		}
	}
	return out, nil
}

// GetByID returns a single university.
func (s *UniversityService) GetByID(ctx context.Context, id string) (*domain.University, error) {
	u, err := s.universities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}
