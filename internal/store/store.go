package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"controlnest-backend/internal/model"
)

// ErrNotFound is returned when a record addressed by id does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	ListUsers(ctx context.Context) ([]model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUserByEmail is the only read that loads the password hash.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
	UpdateUser(ctx context.Context, id string, fields map[string]any) (*model.User, error)
	DeleteUser(ctx context.Context, id string) (*model.User, error)

	ListLocations(ctx context.Context) ([]model.Location, error)
	GetLocation(ctx context.Context, id string) (*model.Location, error)
	CreateLocation(ctx context.Context, l *model.Location) error
	UpdateLocation(ctx context.Context, id string, fields map[string]any) (*model.Location, error)
	DeleteLocation(ctx context.Context, id string) (*model.Location, error)

	// ListDevices returns every device when locationID is empty.
	ListDevices(ctx context.Context, locationID string) ([]model.Device, error)
	GetDevice(ctx context.Context, id string) (*model.Device, error)
	CreateDevice(ctx context.Context, d *model.Device) error
	UpdateDevice(ctx context.Context, id string, fields map[string]any) (*model.Device, error)
	DeleteDevice(ctx context.Context, id string) (*model.Device, error)

	PutSubscription(ctx context.Context, sub *model.PushSubscription, locationIDs []string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint, userID string) error
	SubscriptionsForLocation(ctx context.Context, locationID string) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// takeByID loads a single row, selecting only cols when given.
func takeByID[T any](ctx context.Context, db *gorm.DB, id string, cols []string) (*T, error) {
	var out T
	q := db.WithContext(ctx)
	if len(cols) > 0 {
		q = q.Select(cols)
	}
	if err := q.Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// updateByID applies fields to the row and returns its new state.
func updateByID[T any](ctx context.Context, db *gorm.DB, id string, fields map[string]any, cols []string) (*T, error) {
	var out *T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(new(T)).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		var err error
		out, err = takeByID[T](ctx, tx, id, cols)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// deleteByID removes the row and returns its last snapshot.
func deleteByID[T any](ctx context.Context, db *gorm.DB, id string, cols []string) (*T, error) {
	var out *T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = takeByID[T](ctx, tx, id, cols)
		if err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(new(T)).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
