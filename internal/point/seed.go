// File: internal/point/seed.go
package point

import (
	"fmt"
	"time"
)

// Fixed shape of the demo dataset. Coordinates cluster around a single city
// center so the seeded points render as one neighborhood on a map.
const (
	seedCenterLatitude  = 37.7749
	seedCenterLongitude = -122.4194
	seedUserID          = "seed-user"
)

var seedDescriptions = []struct {
	description string
	status      Status
	address     string
	notes       string
}{
	{"Pothole blocking the bike lane", StatusNew, "101 Market St", ""},
	{"Street light flickering at night", StatusNew, "220 Valencia St", ""},
	{"Overflowing trash can on the corner", StatusInProgress, "5th and Mission", "Crew dispatched"},
	{"Graffiti on the bus shelter", StatusInProgress, "", "Scheduled for cleanup"},
	{"Broken bench in the plaza", StatusNew, "Civic Center Plaza", ""},
	{"Fallen tree branch across the sidewalk", StatusCompleted, "Dolores Park, south entrance", "Removed"},
	{"Leaking fire hydrant", StatusNew, "", ""},
	{"Faded crosswalk markings", StatusCompleted, "Church St and 18th", "Repainted"},
	{"Abandoned shopping cart in the creek", StatusRejected, "", "Private property, forwarded"},
	{"Missing stop sign after collision", StatusInProgress, "Guerrero and 21st", "Temporary sign placed"},
	{"Cracked playground slide", StatusNew, "Mission Playground", ""},
	{"Blocked storm drain before rain season", StatusNew, "", ""},
}

// SeedDataset builds the synthetic map points inserted by a reseed. The set
// has a fixed shape; identifiers are regenerated on every call and timestamps
// are staggered hourly so the list order is deterministic.
func SeedDataset(now time.Time) []MapPoint {
	points := make([]MapPoint, 0, len(seedDescriptions))
	for i, entry := range seedDescriptions {
		pt := MapPoint{
			PointID:     newPointID(),
			UserID:      seedUserID,
			Timestamp:   now.Add(-time.Duration(i) * time.Hour),
			Status:      entry.status,
			Description: entry.description,
			Latitude:    seedCenterLatitude + float64(i%5-2)*0.004,
			Longitude:   seedCenterLongitude + float64(i%7-3)*0.003,
			Accuracy:    5 + float64(i%4)*2.5,
			PhotoID:     fmt.Sprintf("seed-photo-%02d", i+1),
		}
		if entry.address != "" {
			address := entry.address
			pt.Address = &address
		}
		if entry.notes != "" {
			notes := entry.notes
			pt.AdminNotes = &notes
		}
		points = append(points, pt)
	}
	return points
}

// SeedDatasetSize reports how many rows a reseed inserts.
func SeedDatasetSize() int {
	return len(seedDescriptions)
}
