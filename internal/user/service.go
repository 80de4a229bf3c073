package user

import (
	"context"
	"errors"
	"time"

	"nexus_mapping_backend/internal/common"
	"nexus_mapping_backend/internal/config"
	"nexus_mapping_backend/internal/shared"

	"go.uber.org/zap"
)

// ServiceImplementation implements the shared.Service interface.
type ServiceImplementation struct {
	repo        Repository
	cfg         *config.Config
	logger      *zap.Logger
	adminEmails map[string]struct{}
}

var _ shared.Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(
	repo Repository,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	adminEmails := make(map[string]struct{})
	for _, email := range cfg.AdminEmailList() {
		adminEmails[email] = struct{}{}
	}
	return &ServiceImplementation{
		repo:        repo,
		cfg:         cfg,
		logger:      logger.Named("UserService"),
		adminEmails: adminEmails,
	}
}

// ResolveOrCreate returns the user row for the token subject, creating it on
// first login. An existing row is returned unchanged: the role assigned at
// creation sticks, even if the admin allow-list changes afterwards.
func (s *ServiceImplementation) ResolveOrCreate(ctx context.Context, claims *shared.IdentityClaims) (*shared.User, bool, error) {
	if claims == nil || claims.Subject == "" || claims.Email == "" {
		return nil, false, common.ErrBadRequest.WithDetails("invalid payload")
	}

	existing, err := s.repo.FindByID(ctx, claims.Subject)
	if err == nil {
		return DBToShared(existing), false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("Failed to look up user by subject", zap.Error(err), zap.String("subject", claims.Subject))
		return nil, false, err
	}

	role := common.RoleViewer
	if _, isAdmin := s.adminEmails[claims.Email]; isAdmin {
		role = common.RoleAdmin
	}

	dbUser := &User{
		ID:        claims.Subject,
		Email:     claims.Email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if claims.Name != "" {
		name := claims.Name
		dbUser.Name = &name
	}

	if err := s.repo.Create(ctx, dbUser); err != nil {
		if errors.Is(err, common.ErrConflict) {
			// Concurrent first login won the race; the earlier row is authoritative.
			raced, readErr := s.repo.FindByID(ctx, claims.Subject)
			if readErr != nil {
				return nil, false, readErr
			}
			return DBToShared(raced), false, nil
		}
		s.logger.Error("Failed to create user", zap.Error(err), zap.String("subject", claims.Subject))
		return nil, false, err
	}

	s.logger.Info("New user created",
		zap.String("subject", dbUser.ID),
		zap.String("role", dbUser.Role),
	)
	return DBToShared(dbUser), true, nil
}

// GetByID retrieves a user by their ID (token subject).
func (s *ServiceImplementation) GetByID(ctx context.Context, id string) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error("Error finding user by ID", zap.Error(err), zap.String("userID", id))
		}
		return nil, err
	}
	return DBToShared(dbUser), nil
}
