package service

import (
	"context"

	"controlnest-backend/internal/model"
	"controlnest-backend/internal/store"
)

type CreateLocationInput struct {
	Name    string
	Address string
	Phone   string
}

type UpdateLocationInput struct {
	Name    *string
	Address *string
	Phone   *string
}

// LocationService manages locations. The owner is fixed at creation.
type LocationService struct {
	store store.Store
}

func NewLocationService(s store.Store) *LocationService {
	return &LocationService{store: s}
}

func (s *LocationService) List(ctx context.Context) ([]model.Location, error) {
	return s.store.ListLocations(ctx)
}

func (s *LocationService) Get(ctx context.Context, id string) (*model.Location, error) {
	return getOrNil(s.store.GetLocation(ctx, id))
}

// Create stores a location owned by userID.
func (s *LocationService) Create(ctx context.Context, userID string, in CreateLocationInput) (*model.Location, error) {
	l := &model.Location{Name: in.Name, Address: in.Address, Phone: in.Phone, UserID: userID}
	if err := s.store.CreateLocation(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *LocationService) Update(ctx context.Context, id string, in UpdateLocationInput) (*model.Location, error) {
	fields := fieldSet{}
	fields.setString("name", in.Name)
	fields.setString("address", in.Address)
	fields.setString("phone", in.Phone)

	if len(fields) == 0 {
		return s.Get(ctx, id)
	}
	return s.store.UpdateLocation(ctx, id, fields)
}

func (s *LocationService) Delete(ctx context.Context, id string) (*model.Location, error) {
	return s.store.DeleteLocation(ctx, id)
}
