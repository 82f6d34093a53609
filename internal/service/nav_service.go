package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitnshop/bitnshop/internal/audit"
	"github.com/bitnshop/bitnshop/internal/cache"
	"github.com/bitnshop/bitnshop/internal/models"
	"github.com/bitnshop/bitnshop/internal/repository"
	"github.com/bitnshop/bitnshop/pkg/logger"
	"go.uber.org/zap"
)

var ErrNavItemNotFound = errors.New("nav item not found")

// NavService serves the storefront navigation bar. Reads go through the
// Redis cache; any admin mutation invalidates it.
type NavService struct {
	navRepo *repository.NavRepository
	menu    cache.MenuCache
	trail   *audit.Trail
}

func NewNavService(navRepo *repository.NavRepository, menu cache.MenuCache, trail *audit.Trail) *NavService {
	return &NavService{
		navRepo: navRepo,
		menu:    menu,
		trail:   trail,
	}
}

// GetNavItems returns the nav bar in display order, cache first.
func (s *NavService) GetNavItems(ctx context.Context) ([]models.NavItem, error) {
	if s.menu != nil {
		items, err := s.menu.GetNavItems(ctx)
		if err != nil {
			// Cache trouble must not take the storefront down.
			logger.Log.Warn("Nav cache read failed, falling back to database", zap.Error(err))
		} else if items != nil {
			return items, nil
		}
	}

	items, err := s.navRepo.ListNavItems()
	if err != nil {
		return nil, err
	}

	if s.menu != nil {
		if err := s.menu.SetNavItems(ctx, items); err != nil {
			logger.Log.Warn("Nav cache write failed", zap.Error(err))
		}
	}

	return items, nil
}

func (s *NavService) CreateNavItem(ctx context.Context, actorID uint, item *models.NavItem) error {
	if item.Label == "" || item.URL == "" {
		return errors.New("nav item label and url are required")
	}

	if err := s.navRepo.CreateNavItem(item); err != nil {
		logger.Log.Error("Failed to create nav item",
			zap.String("label", item.Label),
			zap.Error(err),
		)
		return err
	}

	s.invalidate(ctx)
	s.record(actorID, item.ID, "created "+item.Label)

	return nil
}

func (s *NavService) UpdateNavItem(ctx context.Context, actorID uint, id uint, label, url string, position int) (*models.NavItem, error) {
	item, err := s.navRepo.GetNavItemByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNavItemNotFound
	}

	item.Label = label
	item.URL = url
	item.Position = position

	if err := s.navRepo.UpdateNavItem(item); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.record(actorID, item.ID, "updated "+item.Label)

	return item, nil
}

func (s *NavService) DeleteNavItem(ctx context.Context, actorID, id uint) error {
	item, err := s.navRepo.GetNavItemByID(id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNavItemNotFound
	}

	if err := s.navRepo.DeleteNavItem(item); err != nil {
		return err
	}

	s.invalidate(ctx)
	s.record(actorID, id, "deleted "+item.Label)

	return nil
}

func (s *NavService) invalidate(ctx context.Context) {
	if s.menu == nil {
		return
	}
	if err := s.menu.Invalidate(ctx); err != nil {
		logger.Log.Warn("Nav cache invalidation failed", zap.Error(err))
	}
}

func (s *NavService) record(actorID, itemID uint, detail string) {
	if s.trail == nil {
		return
	}
	err := s.trail.Record(audit.Entry{
		Action:  audit.ActionNavChanged,
		ActorID: actorID,
		Subject: fmt.Sprintf("nav:%d", itemID),
		Detail:  detail,
	})
	if err != nil {
		logger.Log.Warn("Failed to record audit entry", zap.Error(err))
	}
}
