// File: internal/point/service_test.go
package point

import (
	"context"
	"strings"
	"testing"
	"time"

	"nexus_mapping_backend/internal/common"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&MapPoint{}))
	return db
}

func newTestPointService(t *testing.T, now time.Time) (Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewService(NewGORMRepository(db), zap.NewNop()).(*service)
	svc.now = func() time.Time { return now }
	return svc, db
}

func strPtr(s string) *string { return &s }

func statusPtr(s Status) *Status { return &s }

func TestCreateAssignsServerSideFields(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestPointService(t, now)

	pt, err := svc.Create(context.Background(), CreateMapPointRequest{
		UserID:      "user-1",
		Description: "Broken streetlight",
		PhotoID:     "photo-1",
		Latitude:    47.6062,
		Longitude:   -122.3321,
		Accuracy:    5.5,
		Address:     strPtr("5th Ave"),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(pt.PointID, PointIDPrefix))
	assert.Len(t, pt.PointID, len(PointIDPrefix)+8)
	assert.Equal(t, pt.PointID, strings.ToUpper(pt.PointID))
	assert.Equal(t, StatusNew, pt.Status)
	assert.Equal(t, now, pt.Timestamp)

	stored, err := svc.GetByID(context.Background(), pt.PointID)
	require.NoError(t, err)
	assert.Equal(t, "Broken streetlight", stored.Description)
	require.NotNil(t, stored.Address)
	assert.Equal(t, "5th Ave", *stored.Address)
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _ := newTestPointService(t, time.Now())

	_, err := svc.GetByID(context.Background(), "NEX-PT-MISSING1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func seedSearchFixture(t *testing.T, db *gorm.DB, base time.Time) {
	t.Helper()
	rows := []MapPoint{
		{PointID: "NEX-PT-AAAAAAA1", UserID: "u", Timestamp: base, Status: StatusNew, Description: "Pothole on Main Street", Latitude: 1, Longitude: 1, PhotoID: "p1"},
		{PointID: "NEX-PT-AAAAAAA2", UserID: "u", Timestamp: base.Add(time.Hour), Status: StatusCompleted, Description: "Graffiti removal", Latitude: 1, Longitude: 1, PhotoID: "p2", Address: strPtr("42 Pine Street")},
		{PointID: "NEX-PT-AAAAAAA3", UserID: "u", Timestamp: base.Add(2 * time.Hour), Status: StatusNew, Description: "Fallen tree", Latitude: 1, Longitude: 1, PhotoID: "p3"},
	}
	require.NoError(t, db.Create(&rows).Error)
}

func TestSearchNewestFirst(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc, db := newTestPointService(t, base)
	seedSearchFixture(t, db, base)

	points, pagination, err := svc.Search(context.Background(), SearchQuery{})
	require.NoError(t, err)

	require.Len(t, points, 3)
	assert.Equal(t, "NEX-PT-AAAAAAA3", points[0].PointID)
	assert.Equal(t, "NEX-PT-AAAAAAA1", points[2].PointID)
	assert.Equal(t, int64(3), pagination.TotalItems)
}

func TestSearchStatusFilter(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc, db := newTestPointService(t, base)
	seedSearchFixture(t, db, base)

	points, _, err := svc.Search(context.Background(), SearchQuery{Status: string(StatusCompleted)})
	require.NoError(t, err)

	require.Len(t, points, 1)
	assert.Equal(t, "NEX-PT-AAAAAAA2", points[0].PointID)
}

func TestSearchRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestPointService(t, time.Now())

	_, _, err := svc.Search(context.Background(), SearchQuery{Status: "archived"})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestSearchSubstringIsCaseInsensitive(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc, db := newTestPointService(t, base)
	seedSearchFixture(t, db, base)

	// Matches description and address across different rows.
	points, _, err := svc.Search(context.Background(), SearchQuery{Query: "STREET"})
	require.NoError(t, err)
	require.Len(t, points, 2)

	// Matches by identifier too.
	points, _, err = svc.Search(context.Background(), SearchQuery{Query: "aaaaaaa3"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "NEX-PT-AAAAAAA3", points[0].PointID)
}

func TestSearchPagination(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc, db := newTestPointService(t, base)
	seedSearchFixture(t, db, base)

	points, pagination, err := svc.Search(context.Background(), SearchQuery{Page: 2, Size: 2})
	require.NoError(t, err)

	require.Len(t, points, 1)
	assert.Equal(t, "NEX-PT-AAAAAAA1", points[0].PointID)
	assert.Equal(t, 2, pagination.TotalPages)
	assert.False(t, pagination.HasNext)
	assert.True(t, pagination.HasPrev)
}

func TestUpdateRequiresAtLeastOneField(t *testing.T) {
	svc, _ := newTestPointService(t, time.Now())

	_, err := svc.Update(context.Background(), "NEX-PT-AAAAAAA1", UpdateMapPointRequest{})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	svc, _ := newTestPointService(t, time.Now())

	bad := Status("archived")
	_, err := svc.Update(context.Background(), "NEX-PT-AAAAAAA1", UpdateMapPointRequest{Status: &bad})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestUpdateUnknownPoint(t *testing.T) {
	svc, _ := newTestPointService(t, time.Now())

	_, err := svc.Update(context.Background(), "NEX-PT-MISSING1", UpdateMapPointRequest{Status: statusPtr(StatusCompleted)})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc, db := newTestPointService(t, base)
	seedSearchFixture(t, db, base)

	updated, err := svc.Update(context.Background(), "NEX-PT-AAAAAAA1", UpdateMapPointRequest{
		Status:     statusPtr(StatusInProgress),
		AdminNotes: strPtr("Crew dispatched"),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusInProgress, updated.Status)
	require.NotNil(t, updated.AdminNotes)
	assert.Equal(t, "Crew dispatched", *updated.AdminNotes)
	// Untouched fields survive the partial update.
	assert.Equal(t, "Pothole on Main Street", updated.Description)

	// Notes-only update leaves status alone.
	updated, err = svc.Update(context.Background(), "NEX-PT-AAAAAAA1", UpdateMapPointRequest{AdminNotes: strPtr("Done")})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, updated.Status)
}

func TestReseedReplacesEverything(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc, db := newTestPointService(t, base)
	seedSearchFixture(t, db, base)

	count, err := svc.Reseed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SeedDatasetSize(), count)

	var total int64
	require.NoError(t, db.Model(&MapPoint{}).Count(&total).Error)
	assert.Equal(t, int64(count), total)

	// Prior rows are gone.
	var remaining int64
	require.NoError(t, db.Model(&MapPoint{}).Where("point_id = ?", "NEX-PT-AAAAAAA1").Count(&remaining).Error)
	assert.Zero(t, remaining)

	// Reseeding again yields the same count, not an accumulation.
	count2, err := svc.Reseed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, count, count2)
	require.NoError(t, db.Model(&MapPoint{}).Count(&total).Error)
	assert.Equal(t, int64(count2), total)
}
