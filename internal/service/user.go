package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventgate/internal/apperr"
	"eventgate/internal/auth"
	"eventgate/internal/model"
)

// UserService manages accounts in the identity store.
type UserService struct {
	users UserStore
	now   func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users, now: time.Now}
}

// Signup creates an account. Public signups (nil actor) always become
// participants; only admins may assign another role.
func (s *UserService) Signup(ctx context.Context, actor *model.User, req model.SignupRequest) (*model.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" || req.Password == "" {
		return nil, apperr.InvalidArgument("email, name and password are required")
	}
	if !isValidEmail(req.Email) {
		return nil, apperr.InvalidArgument("email is not a valid address")
	}
	if len(req.Password) < 6 {
		return nil, apperr.InvalidArgument("password must be at least 6 characters")
	}

	role := model.RoleParticipant
	if actor != nil && actor.Role == model.RoleAdmin && req.Role != "" {
		if !model.ValidRole(req.Role) {
			return nil, apperr.InvalidArgument("unknown role")
		}
		role = req.Role
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials and returns the account. All failure
// modes collapse into Unauthenticated so callers cannot probe for emails.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Unauthenticated("invalid credentials")
	}
	if !user.IsActive || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.Unauthenticated("invalid credentials")
	}
	return user, nil
}

// GetByID loads an account for the middleware resolving a session token.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns all accounts; admin only.
func (s *UserService) List(ctx context.Context, actor *model.User) ([]model.User, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// Get returns a single account; admins may read any, others only their own.
func (s *UserService) Get(ctx context.Context, actor *model.User, id string) (*model.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if actor.Role != model.RoleAdmin && actor.ID != id {
		return nil, apperr.Forbidden("you do not have permission to access this user")
	}
	return s.users.GetByID(ctx, id)
}

// Update applies admin account maintenance. Nil fields stay untouched.
func (s *UserService) Update(ctx context.Context, actor *model.User, id string, req model.UpdateUserRequest) (*model.User, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if !isValidEmail(email) {
			return nil, apperr.InvalidArgument("email is not a valid address")
		}
		user.Email = email
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		if !model.ValidRole(*req.Role) {
			return nil, apperr.InvalidArgument("unknown role")
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes an account; admin only. Admins cannot delete themselves,
// which keeps at least one admin alive.
func (s *UserService) Delete(ctx context.Context, actor *model.User, id string) error {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return err
	}
	if actor.ID == id {
		return apperr.InvalidState("cannot delete your own account")
	}
	return s.users.Delete(ctx, id)
}

// EnsureAdmin creates the bootstrap admin account if it does not exist yet.
// Called once at startup.
func (s *UserService) EnsureAdmin(ctx context.Context, email, name, password string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	admin := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}
	log.Printf("bootstrap admin account created: %s", email)
	return nil
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
