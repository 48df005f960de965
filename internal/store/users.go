package store

import (
	"context"

	"controlnest-backend/internal/model"
)

// userColumns is every user column except the password hash.
var userColumns = []string{"id", "created_at", "updated_at", "name", "email"}

func (s *gormStore) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := s.db.WithContext(ctx).Select(userColumns).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *gormStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return takeByID[model.User](ctx, s.db, id, userColumns)
}

func (s *gormStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *gormStore) UpdateUser(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	return updateByID[model.User](ctx, s.db, id, fields, userColumns)
}

func (s *gormStore) DeleteUser(ctx context.Context, id string) (*model.User, error) {
	return deleteByID[model.User](ctx, s.db, id, userColumns)
}
