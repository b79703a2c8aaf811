package domain

// CompanyInput creates a company, optionally with a logo.
type CompanyInput struct {
	Name     string
	Address  string
	BranchID string
	Logo     *Upload
}

// CompanyLogoField is the multipart field carrying the company logo.
const CompanyLogoField = "logo"

// BranchInput creates a branch. Coordinates are decimal degrees.
type BranchInput struct {
	Name         string
	Address      string
	LocationCity string
	GPSLat       float64
	GPSLong      float64
	RadiusMeters string
	CompanyID    string
}

// Payload renders the branch in the shape the branches endpoint expects.
func (b BranchInput) Payload() map[string]any {
	payload := map[string]any{
		"name":          b.Name,
		"address":       b.Address,
		"location_city": b.LocationCity,
		"gps_lat":       b.GPSLat,
		"gps_long":      b.GPSLong,
		"radius_meters": b.RadiusMeters,
	}
	if b.CompanyID != "" {
		payload["company_id"] = b.CompanyID
	}
	return payload
}

// DepartmentBatch creates several departments under one company.
type DepartmentBatch struct {
	CompanyID string
	Names     []string
}
