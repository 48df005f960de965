package store

import (
	"context"

	"controlnest-backend/internal/model"
)

func (s *gormStore) ListLocations(ctx context.Context) ([]model.Location, error) {
	locations := []model.Location{}
	if err := s.db.WithContext(ctx).Order("id").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

func (s *gormStore) GetLocation(ctx context.Context, id string) (*model.Location, error) {
	return takeByID[model.Location](ctx, s.db, id, nil)
}

func (s *gormStore) CreateLocation(ctx context.Context, l *model.Location) error {
	return s.db.WithContext(ctx).Create(l).Error
}

func (s *gormStore) UpdateLocation(ctx context.Context, id string, fields map[string]any) (*model.Location, error) {
	return updateByID[model.Location](ctx, s.db, id, fields, nil)
}

func (s *gormStore) DeleteLocation(ctx context.Context, id string) (*model.Location, error) {
	return deleteByID[model.Location](ctx, s.db, id, nil)
}
