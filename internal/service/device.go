package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"controlnest-backend/internal/logging"
	"controlnest-backend/internal/media"
	"controlnest-backend/internal/model"
	"controlnest-backend/internal/store"
)

// Upload is an image file received with a device request.
type Upload struct {
	Data     []byte
	MimeType string
	Name     string
}

type CreateDeviceInput struct {
	LocationID string
	Type       string
	Status     string
	Image      *Upload
}

type UpdateDeviceInput struct {
	Type   *string
	Status *string
	Image  *Upload
}

// StatusNotifier is told about devices whose status changed.
type StatusNotifier interface {
	NotifyStatusChange(device model.Device, previous string)
}

// DeviceService manages devices and the lifecycle of their images.
type DeviceService struct {
	store    store.Store
	media    media.Service
	notifier StatusNotifier
}

// NewDeviceService wires the device service. notifier may be nil.
func NewDeviceService(s store.Store, m media.Service, notifier StatusNotifier) *DeviceService {
	return &DeviceService{store: s, media: m, notifier: notifier}
}

// List returns the devices at locationID, or every device when it is empty.
func (s *DeviceService) List(ctx context.Context, locationID string) ([]model.Device, error) {
	return s.store.ListDevices(ctx, locationID)
}

func (s *DeviceService) Get(ctx context.Context, id string) (*model.Device, error) {
	return getOrNil(s.store.GetDevice(ctx, id))
}

// Create generates the serial number and uploads the image, if any, before
// storing the device.
func (s *DeviceService) Create(ctx context.Context, in CreateDeviceInput) (*model.Device, error) {
	if _, err := s.store.GetLocation(ctx, in.LocationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownLocation
		}
		return nil, err
	}

	d := &model.Device{
		SerialNumber: uuid.NewString(),
		Type:         in.Type,
		Status:       in.Status,
		LocationID:   in.LocationID,
	}
	if in.Image != nil {
		img, err := s.upload(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		d.Image = img
	}

	if err := s.store.CreateDevice(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update applies the present, non-empty fields. A new image replaces the
// stored one: the old image is deleted remotely, then the new one uploaded.
// Failures abort the flow where they happen.
func (s *DeviceService) Update(ctx context.Context, id string, in UpdateDeviceInput) (*model.Device, error) {
	fields := fieldSet{}
	fields.setString("type", in.Type)
	fields.setString("status", in.Status)

	if len(fields) == 0 && in.Image == nil {
		return s.Get(ctx, id)
	}

	current, err := s.store.GetDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Image != nil {
		if err := s.deleteImage(ctx, current.Image); err != nil {
			return nil, err
		}
		img, err := s.upload(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		fields["image"] = img
	}

	updated, err := s.store.UpdateDevice(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && updated.Status != current.Status {
		s.notifier.NotifyStatusChange(*updated, current.Status)
	}
	return updated, nil
}

// Delete removes the device image remotely before deleting the row.
func (s *DeviceService) Delete(ctx context.Context, id string) (*model.Device, error) {
	current, err := s.store.GetDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.deleteImage(ctx, current.Image); err != nil {
		return nil, err
	}
	return s.store.DeleteDevice(ctx, id)
}

func (s *DeviceService) deleteImage(ctx context.Context, img *model.Image) error {
	if img == nil || img.ID == "" {
		return nil
	}
	if s.media == nil {
		return fmt.Errorf("delete image %s: media host is not configured", img.ID)
	}
	return s.media.Delete(ctx, img.ID)
}

func (s *DeviceService) upload(ctx context.Context, u *Upload) (*model.Image, error) {
	if s.media == nil {
		return nil, errors.New("upload image: media host is not configured")
	}
	img, err := s.media.Upload(ctx, u.Data, u.MimeType, u.Name)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Debug().Str("image", img.ID).Msg("device image stored")
	return img, nil
}
