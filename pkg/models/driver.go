package models

import "time"

type ApprovalStatus string

const (
	ApprovalNone     ApprovalStatus = "NONE"
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalAccepted ApprovalStatus = "ACCEPTED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// Driver profile. The profile and approval status are owned by an external
// profile-management collaborator; the dispatch core reads them and mutates
// only the wallet balance (fee settlement).
type Driver struct {
	ID                int64          `json:"id"`
	FirstName         string         `json:"first_name"`
	LastName          string         `json:"last_name"`
	ProfilePictureURL string         `json:"profile_picture_url"`
	LicenseNumber     string         `json:"license_number"`
	LicensePictureURL string         `json:"license_picture_url"`
	CarName           string         `json:"car_name"`
	CarNumber         string         `json:"car_number"`
	CarPictureURL     string         `json:"car_picture_url"`
	PassportPicURL    string         `json:"passport_picture_url"`
	DistrictID        *int64         `json:"district_id"`
	Rating            float64        `json:"rating"`
	RideCount         int            `json:"ride_count"`
	WalletBalance     int64          `json:"wallet_balance"`
	ApprovalStatus    ApprovalStatus `json:"approval_status"`
	CreatedAt         time.Time      `json:"created_at"`
}

// ProfileComplete reports whether every field required for dispatch
// eligibility is filled in.
func (d *Driver) ProfileComplete() bool {
	return d.FirstName != "" &&
		d.LastName != "" &&
		d.ProfilePictureURL != "" &&
		d.LicenseNumber != "" &&
		d.LicensePictureURL != "" &&
		d.CarName != "" &&
		d.CarNumber != "" &&
		d.CarPictureURL != "" &&
		d.PassportPicURL != "" &&
		d.DistrictID != nil
}
