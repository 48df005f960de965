package store

import (
	"context"

	"controlnest-backend/internal/model"
)

func (s *gormStore) ListDevices(ctx context.Context, locationID string) ([]model.Device, error) {
	devices := []model.Device{}
	q := s.db.WithContext(ctx).Order("id")
	if locationID != "" {
		q = q.Where("location_id = ?", locationID)
	}
	if err := q.Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (s *gormStore) GetDevice(ctx context.Context, id string) (*model.Device, error) {
	return takeByID[model.Device](ctx, s.db, id, nil)
}

func (s *gormStore) CreateDevice(ctx context.Context, d *model.Device) error {
	return s.db.WithContext(ctx).Create(d).Error
}

func (s *gormStore) UpdateDevice(ctx context.Context, id string, fields map[string]any) (*model.Device, error) {
	return updateByID[model.Device](ctx, s.db, id, fields, nil)
}

func (s *gormStore) DeleteDevice(ctx context.Context, id string) (*model.Device, error) {
	return deleteByID[model.Device](ctx, s.db, id, nil)
}
