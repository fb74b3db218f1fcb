package models

type Role string

const (
	RoleClient   Role = "client"
	RoleDriver   Role = "driver"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleDriver, RoleOperator, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller. Identity and role come from the external
// auth layer; the dispatch core trusts them.
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}
