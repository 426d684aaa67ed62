package identity

import (
	"context"
	"errors"

	"github.com/alfred/backend/internal/domain/facet"
	"github.com/alfred/backend/internal/domain/identity"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService materializes users from token claims and manages their profile
type UserService struct {
	userRepo identity.UserRepository
	facets   *facet.Catalogue
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, facets *facet.Catalogue, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		facets:   facets,
		logger:   logger,
	}
}

// Resolve returns the user for the token subject, creating it on first use
// and refreshing email and name when the claims changed.
func (s *UserService) Resolve(ctx context.Context, claims ClaimsInput) (*identity.User, error) {
	user, err := s.userRepo.FindByExternalID(ctx, claims.Subject)
	switch {
	case err == nil:
		if user.SyncClaims(claims.Email, claims.Name) {
			if err := s.userRepo.Save(ctx, user); err != nil {
				s.logger.Warn("Failed to refresh user claims", zap.String("user_id", user.ID.String()), zap.Error(err))
			}
		}
		return user, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	user, err = identity.NewUserFromClaims(claims.Subject, claims.Email, claims.Name)
	if err != nil {
		return nil, err
	}
	user.AvatarURL = claims.Picture
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// a concurrent first request created the row
			return s.userRepo.FindByExternalID(ctx, claims.Subject)
		}
		return nil, err
	}

	s.logger.Info("User created from token claims", zap.String("user_id", user.ID.String()))
	return user, nil
}

// GetMe returns the caller's profile
func (s *UserService) GetMe(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToUserDTO(user), nil
}

// UpdateProfile changes the display name and default facet
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	defaultFacet := ""
	if input.DefaultFacet != "" {
		if defaultFacet, err = s.facets.Resolve(input.DefaultFacet); err != nil {
			return nil, err
		}
	}
	if err := user.UpdateProfile(input.Name, defaultFacet); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	return ToUserDTO(user), nil
}
