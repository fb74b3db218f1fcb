package models

// District / Region are reference data owned by an administrative
// collaborator. A district belongs to exactly one region.
type District struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	RegionID int64  `json:"region_id"`
}

type Region struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
