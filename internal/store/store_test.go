package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"controlnest-backend/config"
	"controlnest-backend/internal/db"
	"controlnest-backend/internal/model"
)

// noPasswordMatcher fails any query that touches the password column.
var noPasswordMatcher = sqlmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
	if strings.Contains(actualSQL, "password") {
		return fmt.Errorf("query must not read the password column: %s", actualSQL)
	}
	return sqlmock.QueryMatcherRegexp.Match(expectedSQL, actualSQL)
})

// A helper function to create a mock database connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(noPasswordMatcher))
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	gormDB, err := db.Init(&config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	return NewGormStore(gormDB)
}

func strPtr(s string) *string { return &s }

func TestGormStore_UserReadsNeverSelectPassword(t *testing.T) {
	const id = "65f1a2b3c4d5e6f708192a3b"

	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		run              func(s Store) error
		expectedErr      error
	}{
		{
			name: "get by id returns not found",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM "users" WHERE id = $1`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))
			},
			run: func(s Store) error {
				_, err := s.GetUserByID(context.Background(), id)
				return err
			},
			expectedErr: ErrNotFound,
		},
		{
			name: "get by id maps the row",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM "users" WHERE id = $1`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
						AddRow(id, "Ada", "ada@example.com"))
			},
			run: func(s Store) error {
				u, err := s.GetUserByID(context.Background(), id)
				if err != nil {
					return err
				}
				if u.ID != id || *u.Email != "ada@example.com" || u.Password != nil {
					return fmt.Errorf("unexpected user %+v", u)
				}
				return nil
			},
		},
		{
			name: "list users",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM "users" ORDER BY id`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
						AddRow(id, "Ada", "ada@example.com"))
			},
			run: func(s Store) error {
				users, err := s.ListUsers(context.Background())
				if err != nil {
					return err
				}
				if len(users) != 1 {
					return fmt.Errorf("expected one user, got %d", len(users))
				}
				return nil
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newMockDB(t)
			s := NewGormStore(gormDB)

			tc.mockExpectations(mock)

			err := tc.run(s)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_ListDevicesFiltersByLocation(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "devices" WHERE location_id = $1 ORDER BY id`)).
		WithArgs("65f1a2b3c4d5e6f708192a3b").
		WillReturnRows(sqlmock.NewRows([]string{"id", "serial_number", "type", "status", "location_id"}).
			AddRow("65f1a2b3c4d5e6f708192a3c", "sn-1", "pos", "active", "65f1a2b3c4d5e6f708192a3b"))

	devices, err := s.ListDevices(context.Background(), "65f1a2b3c4d5e6f708192a3b")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "sn-1", devices[0].SerialNumber)
	assert.Nil(t, devices[0].Image)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_UserLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	u := &model.User{Name: strPtr("Ada"), Email: strPtr("ada@example.com"), Password: strPtr("hash")}
	require.NoError(t, s.CreateUser(ctx, u))
	require.Len(t, u.ID, 24)

	byEmail, err := s.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail.Password)
	assert.Equal(t, "hash", *byEmail.Password)

	byID, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, byID.Password)

	updated, err := s.UpdateUser(ctx, u.ID, map[string]any{"name": "Ada L."})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", *updated.Name)
	assert.Nil(t, updated.Password)

	_, err = s.UpdateUser(ctx, "65f1a2b3c4d5e6f708192a3b", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err := s.DeleteUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, deleted.ID)

	_, err = s.DeleteUser(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetUserByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_DeviceImageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	loc := &model.Location{Name: "HQ", Address: "1 Main St", Phone: "555", UserID: "65f1a2b3c4d5e6f708192a3b"}
	require.NoError(t, s.CreateLocation(ctx, loc))

	plain := &model.Device{SerialNumber: uuid.NewString(), Type: "pos", Status: "active", LocationID: loc.ID}
	require.NoError(t, s.CreateDevice(ctx, plain))

	got, err := s.GetDevice(ctx, plain.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Image)

	img := &model.Image{ID: "devices/abc", URL: "https://cdn.example.com/devices/abc"}
	updated, err := s.UpdateDevice(ctx, plain.ID, map[string]any{"image": img, "status": "inactive"})
	require.NoError(t, err)
	require.NotNil(t, updated.Image)
	assert.Equal(t, *img, *updated.Image)
	assert.Equal(t, "inactive", updated.Status)

	other := &model.Device{SerialNumber: uuid.NewString(), Type: "kiosk", Status: "active", LocationID: "65f1a2b3c4d5e6f708192a3c"}
	require.NoError(t, s.CreateDevice(ctx, other))

	atLoc, err := s.ListDevices(ctx, loc.ID)
	require.NoError(t, err)
	assert.Len(t, atLoc, 1)

	all, err := s.ListDevices(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGormStore_Subscriptions(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	hq := &model.Location{Name: "HQ", Address: "a", Phone: "1", UserID: "65f1a2b3c4d5e6f708192a3b"}
	annex := &model.Location{Name: "Annex", Address: "b", Phone: "2", UserID: "65f1a2b3c4d5e6f708192a3b"}
	require.NoError(t, s.CreateLocation(ctx, hq))
	require.NoError(t, s.CreateLocation(ctx, annex))

	sub := &model.PushSubscription{Endpoint: "https://push.example/1", P256DH: "p", Auth: "a", UserID: "65f1a2b3c4d5e6f708192a3b"}
	require.NoError(t, s.PutSubscription(ctx, sub, []string{hq.ID}))

	subs, err := s.SubscriptionsForLocation(ctx, hq.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "https://push.example/1", subs[0].Endpoint)

	// Replacing moves the subscription to the annex only.
	sub = &model.PushSubscription{Endpoint: "https://push.example/1", P256DH: "p2", Auth: "a2", UserID: "65f1a2b3c4d5e6f708192a3b"}
	require.NoError(t, s.PutSubscription(ctx, sub, []string{annex.ID}))

	got, err := s.GetSubscription(ctx, "https://push.example/1")
	require.NoError(t, err)
	assert.Equal(t, "p2", got.P256DH)
	require.Len(t, got.Locations, 1)
	assert.Equal(t, annex.ID, got.Locations[0].ID)

	subs, err = s.SubscriptionsForLocation(ctx, hq.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	// Another user cannot delete it.
	require.NoError(t, s.DeleteSubscription(ctx, "https://push.example/1", "65f1a2b3c4d5e6f708192a3c"))
	_, err = s.GetSubscription(ctx, "https://push.example/1")
	require.NoError(t, err)

	require.NoError(t, s.DeleteSubscription(ctx, "https://push.example/1", "65f1a2b3c4d5e6f708192a3b"))
	_, err = s.GetSubscription(ctx, "https://push.example/1")
	assert.ErrorIs(t, err, ErrNotFound)
}
