package services

import (
	"context"
	"errors"
	"fmt"

	"dooh/internal/models"
	"dooh/internal/utils/logger"
)

// RoleSyncPolicy decides whether signup metadata keeps overriding the stored
// profile role after the profile exists.
type RoleSyncPolicy string

const (
	// RoleSyncAlways overwrites the stored role whenever metadata declares a
	// different valid role.
	RoleSyncAlways RoleSyncPolicy = "always"
	// RoleSyncFirstOnly uses metadata only when creating the profile.
	RoleSyncFirstOnly RoleSyncPolicy = "first_only"
)

const (
	defaultRole         = models.UserRoleAdvertiser
	defaultBusinessName = "Business"
)

// Identity is an authenticated user as seen by the resolver.
type Identity struct {
	UserID   string
	Email    string
	Metadata models.SignupMetadata
}

type ProfileResolver struct {
	profiles ProfileStore
	policy   RoleSyncPolicy
	log      *logger.Logger
}

func NewProfileResolver(profiles ProfileStore, policy RoleSyncPolicy) *ProfileResolver {
	if policy != RoleSyncFirstOnly {
		policy = RoleSyncAlways
	}
	return &ProfileResolver{
		profiles: profiles,
		policy:   policy,
		log:      logger.New("PROFILE"),
	}
}

// Resolve returns the single profile for id, creating it from signup metadata
// on first observation. Store failures are returned unchanged; callers decide
// whether they are fatal.
func (r *ProfileResolver) Resolve(ctx context.Context, id Identity) (*models.UserProfile, error) {
	profile, err := r.profiles.GetByUserID(ctx, id.UserID)
	if errors.Is(err, ErrNotFound) {
		return r.create(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	declared := id.Metadata.Role
	if r.policy == RoleSyncAlways && models.IsValidUserRole(declared) && declared != profile.Role {
		r.log.Info("Syncing role for %s: %s -> %s", id.UserID, profile.Role, declared)
		if err := r.profiles.UpdateRole(ctx, id.UserID, declared); err != nil {
			return nil, fmt.Errorf("failed to sync profile role: %w", err)
		}
		profile.Role = declared
	}
	return profile, nil
}

func (r *ProfileResolver) create(ctx context.Context, id Identity) (*models.UserProfile, error) {
	role := id.Metadata.Role
	if !models.IsValidUserRole(role) {
		role = defaultRole
	}
	business := id.Metadata.BusinessName
	if business == "" {
		business = defaultBusinessName
	}

	profile := &models.UserProfile{
		UserID:       id.UserID,
		Role:         role,
		BusinessName: business,
		ContactEmail: id.Email,
		IsVerified:   false,
	}
	err := r.profiles.Create(ctx, profile)
	if errors.Is(err, ErrDuplicate) {
		// a concurrent session created it first
		existing, getErr := r.profiles.GetByUserID(ctx, id.UserID)
		if getErr != nil {
			return nil, fmt.Errorf("failed to load profile after conflict: %w", getErr)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return profile, nil
}
