package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"controlnest-backend/internal/model"
)

// PutSubscription creates or replaces a subscription and its watched locations.
func (s *gormStore) PutSubscription(ctx context.Context, sub *model.PushSubscription, locationIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Locations").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "user_id"}),
		}).Create(sub).Error; err != nil {
			return err
		}

		locations := []*model.Location{}
		if len(locationIDs) > 0 {
			if err := tx.Where("id IN ?", locationIDs).Find(&locations).Error; err != nil {
				return err
			}
		}

		return tx.Model(sub).Association("Locations").Replace(locations)
	})
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).Preload("Locations").Where("endpoint = ?", endpoint).Take(&sub).Error; err != nil {
		return nil, notFound(err)
	}
	return &sub, nil
}

// DeleteSubscription removes the caller's subscription. Deleting an unknown
// endpoint is not an error.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub model.PushSubscription
		err := tx.Where("endpoint = ? AND user_id = ?", endpoint, userID).Take(&sub).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Model(&sub).Association("Locations").Clear(); err != nil {
			return err
		}
		return tx.Delete(&sub).Error
	})
}

func (s *gormStore) SubscriptionsForLocation(ctx context.Context, locationID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_locations sl ON sl.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sl.location_id = ?", locationID).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
