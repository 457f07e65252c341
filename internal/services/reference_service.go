package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"autodocs/internal/models"
	"autodocs/internal/repositories"
)

// ReferenceService — единая точка "get-or-400" для внешних ключей.
// Справочники почти не меняются, поэтому результат кэшируется.
type ReferenceService struct {
	repo  repositories.ReferenceRepository
	cache *cache.Cache
}

const (
	referenceCacheTTL     = 10 * time.Minute
	referenceCacheCleanup = 30 * time.Minute
)

func NewReferenceService(repo repositories.ReferenceRepository) *ReferenceService {
	return &ReferenceService{
		repo:  repo,
		cache: cache.New(referenceCacheTTL, referenceCacheCleanup),
	}
}

func cacheKey(kind models.ReferenceKind, key any) string {
	return fmt.Sprintf("%s:%v", kind, key)
}

// Resolve возвращает ErrInvalidReference, если id не найден.
func (s *ReferenceService) Resolve(ctx context.Context, kind models.ReferenceKind, id int) (*models.Reference, error) {
	key := cacheKey(kind, id)
	if v, ok := s.cache.Get(key); ok {
		return v.(*models.Reference), nil
	}
	ref, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrInvalidReference, "Invalid %s ID", kind)
		}
		return nil, err
	}
	// департаменты редактируются админом — их не кэшируем
	if kind != models.RefDepartment {
		s.cache.SetDefault(key, ref)
	}
	return ref, nil
}

func (s *ReferenceService) ResolveName(ctx context.Context, kind models.ReferenceKind, name string) (*models.Reference, error) {
	key := cacheKey(kind, "name="+name)
	if v, ok := s.cache.Get(key); ok {
		return v.(*models.Reference), nil
	}
	ref, err := s.repo.GetByName(ctx, kind, name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrInvalidReference, "Unknown %s %q", kind, name)
		}
		return nil, err
	}
	s.cache.SetDefault(key, ref)
	return ref, nil
}
