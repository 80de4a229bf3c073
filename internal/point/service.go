// File: internal/point/service.go
package point

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nexus_mapping_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for map point business logic.
type Service interface {
	Create(ctx context.Context, req CreateMapPointRequest) (*MapPoint, error)
	GetByID(ctx context.Context, id string) (*MapPoint, error)
	Search(ctx context.Context, query SearchQuery) ([]MapPoint, *common.Pagination, error)
	Update(ctx context.Context, id string, req UpdateMapPointRequest) (*MapPoint, error)
	Reseed(ctx context.Context) (int, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new map point service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.Named("PointService"),
		now:    time.Now,
	}
}

// newPointID generates an identifier of shape NEX-PT-XXXXXXXX.
func newPointID() string {
	return PointIDPrefix + strings.ToUpper(uuid.NewString()[:8])
}

// Create stores a new submission. Identifier, timestamp and status are
// assigned here; any client-supplied values for them are ignored.
func (s *service) Create(ctx context.Context, req CreateMapPointRequest) (*MapPoint, error) {
	pt := &MapPoint{
		PointID:     newPointID(),
		UserID:      req.UserID,
		Timestamp:   s.now().UTC(),
		Status:      StatusNew,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Accuracy:    req.Accuracy,
		Address:     req.Address,
		PhotoID:     req.PhotoID,
	}

	if err := s.repo.Create(ctx, pt); err != nil {
		s.logger.Error("Failed to create map point", zap.Error(err), zap.String("pointID", pt.PointID))
		return nil, common.ErrInternalServer
	}

	s.logger.Info("Map point created", zap.String("pointID", pt.PointID), zap.String("userID", pt.UserID))
	return pt, nil
}

// GetByID retrieves a single map point.
func (s *service) GetByID(ctx context.Context, id string) (*MapPoint, error) {
	return s.repo.FindByID(ctx, id)
}

// Search lists map points newest first with the query's filters applied.
func (s *service) Search(ctx context.Context, query SearchQuery) ([]MapPoint, *common.Pagination, error) {
	if query.Status != "" && !Status(query.Status).Valid() {
		return nil, nil, common.ErrBadRequest.WithMessage("Invalid status value.")
	}
	return s.repo.Search(ctx, query)
}

// Update applies a partial update of status and/or adminNotes.
func (s *service) Update(ctx context.Context, id string, req UpdateMapPointRequest) (*MapPoint, error) {
	if req.Status == nil && req.AdminNotes == nil {
		return nil, common.ErrBadRequest.WithMessage("No fields to update.")
	}

	fields := make(map[string]interface{}, 2)
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, common.ErrBadRequest.WithMessage("Invalid status value.")
		}
		fields["status"] = *req.Status
	}
	if req.AdminNotes != nil {
		fields["admin_notes"] = *req.AdminNotes
	}

	affected, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		s.logger.Error("Failed to update map point", zap.Error(err), zap.String("pointID", id))
		return nil, common.ErrInternalServer
	}
	if affected == 0 {
		// Either the row is absent or the update was a no-op; a re-read
		// distinguishes the two.
		if _, findErr := s.repo.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
	}

	return s.repo.FindByID(ctx, id)
}

// Reseed destructively replaces all map points with the synthetic dataset
// and returns the number of rows inserted.
func (s *service) Reseed(ctx context.Context) (int, error) {
	points := SeedDataset(s.now().UTC())
	if err := s.repo.ReplaceAll(ctx, points); err != nil {
		s.logger.Error("Reseed failed", zap.Error(err))
		return 0, fmt.Errorf("reseed failed: %w", err)
	}
	s.logger.Info("Map points reseeded", zap.Int("count", len(points)))
	return len(points), nil
}
