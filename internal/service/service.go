package service

import (
	"errors"

	"controlnest-backend/internal/store"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = store.ErrNotFound
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("Invalid credentials")
	// ErrUnknownLocation is returned when a device names a missing location.
	ErrUnknownLocation = errors.New("location does not exist")
)

// fieldSet collects the columns of a partial update.
type fieldSet map[string]any

// setString records v under col when it is present and non-empty.
func (f fieldSet) setString(col string, v *string) {
	if v != nil && *v != "" {
		f[col] = *v
	}
}

// getOrNil turns store.ErrNotFound into a null read result.
func getOrNil[T any](v *T, err error) (*T, error) {
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
