package service

import (
	"context"
	"errors"
	"fmt"

	"controlnest-backend/internal/auth"
	"controlnest-backend/internal/model"
	"controlnest-backend/internal/store"
)

// TokenIssuer signs bearer tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// CreateUserInput is a registration request.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserInput holds the fields of a partial user update.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

// UserService manages user records and logins.
type UserService struct {
	store  store.Store
	tokens TokenIssuer
}

func NewUserService(s store.Store, tokens TokenIssuer) *UserService {
	return &UserService{store: s, tokens: tokens}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.store.ListUsers(ctx)
}

// Get returns nil without error when the user does not exist.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	return getOrNil(s.store.GetUserByID(ctx, id))
}

// GetByEmail includes the password hash and is meant for credential checks only.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return getOrNil(s.store.GetUserByEmail(ctx, email))
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{Name: &in.Name, Email: &in.Email, Password: &hash}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.Password = nil
	return u, nil
}

// Update applies the present, non-empty fields. With nothing to apply it
// issues no write and returns the current record.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*model.User, error) {
	fields := fieldSet{}
	fields.setString("name", in.Name)
	fields.setString("email", in.Email)
	if in.Password != nil && *in.Password != "" {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		fields["password"] = hash
	}

	if len(fields) == 0 {
		return s.Get(ctx, id)
	}
	return s.store.UpdateUser(ctx, id, fields)
}

func (s *UserService) Delete(ctx context.Context, id string) (*model.User, error) {
	return s.store.DeleteUser(ctx, id)
}

// Login checks the credentials and returns the user with a signed token.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if u.Password == nil || !auth.VerifyPassword(password, *u.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	u.Password = nil
	return u, token, nil
}
