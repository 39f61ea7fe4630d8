package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"buybizz/internal/apperror"
	"buybizz/internal/model"
	"buybizz/internal/repository"

	"gorm.io/gorm"
)

type IdentityService interface {
	// CurrentUser looks the caller up without side effects.
	CurrentUser(ctx context.Context, identity *model.Identity) (*model.User, bool)
	// Sync makes sure a local user exists for identity. Safe to repeat.
	Sync(ctx context.Context, identity *model.Identity) (*model.User, error)
	// Resolve is CurrentUser with a single Sync fallback for callers the
	// identity webhook has not reached yet. A failed sync reads as no user.
	Resolve(ctx context.Context, identity *model.Identity) (*model.User, bool)
}

type identityServiceImpl struct {
	userRepo repository.UserRepository
}

func NewIdentityService(userRepo repository.UserRepository) IdentityService {
	return &identityServiceImpl{
		userRepo: userRepo,
	}
}

func (s *identityServiceImpl) CurrentUser(ctx context.Context, identity *model.Identity) (*model.User, bool) {
	if identity == nil || identity.ExternalID == "" {
		return nil, false
	}

	user, err := s.userRepo.FindByExternalID(ctx, identity.ExternalID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.ErrorContext(ctx, "lookup current user", "external_id", identity.ExternalID, "error", err)
		}
		return nil, false
	}
	return user, true
}

func (s *identityServiceImpl) Sync(ctx context.Context, identity *model.Identity) (*model.User, error) {
	if identity == nil || identity.ExternalID == "" {
		return nil, apperror.Validation("identity has no external id")
	}

	user, err := s.userRepo.UpsertByExternalID(ctx, &model.User{
		ExternalID: identity.ExternalID,
		Email:      identity.Email,
		Name:       identity.Name,
		Role:       model.RoleCustomer,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", identity.ExternalID, err)
	}
	return user, nil
}

func (s *identityServiceImpl) Resolve(ctx context.Context, identity *model.Identity) (*model.User, bool) {
	if user, ok := s.CurrentUser(ctx, identity); ok {
		return user, true
	}
	if identity == nil || identity.ExternalID == "" {
		return nil, false
	}

	user, err := s.Sync(ctx, identity)
	if err != nil {
		slog.WarnContext(ctx, "sync identity on first request", "external_id", identity.ExternalID, "error", err)
		return nil, false
	}
	slog.InfoContext(ctx, "created local user from session", "user_id", user.ID, "external_id", user.ExternalID)
	return user, true
}

// Authorize is the single role gate: no user is Unauthenticated, a user whose
// role lacks the capability is Forbidden.
func Authorize(user *model.User, capability model.Capability) (*model.User, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	if !user.Role.Can(capability) {
		return nil, apperror.Forbidden(fmt.Sprintf("Forbidden: role %s cannot %s", user.Role, capability))
	}
	return user, nil
}

func RequireAuth(user *model.User) (*model.User, error) {
	return Authorize(user, model.CapabilityShop)
}

func RequireVendor(user *model.User) (*model.User, error) {
	return Authorize(user, model.CapabilitySell)
}

func RequireAdmin(user *model.User) (*model.User, error) {
	return Authorize(user, model.CapabilityAdminister)
}
