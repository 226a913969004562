package model

// Role is a position in the access lattice CASHIER < ADMIN < MAIN_ADMIN
type Role string

const (
	RoleCashier   Role = "CASHIER"
	RoleAdmin     Role = "ADMIN"
	RoleMainAdmin Role = "MAIN_ADMIN"
)

// Rank returns the lattice position; unknown roles rank below CASHIER.
func (r Role) Rank() int {
	switch r {
	case RoleCashier:
		return 1
	case RoleAdmin:
		return 2
	case RoleMainAdmin:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether r is min or above in the lattice
func (r Role) AtLeast(min Role) bool {
	return r.Rank() > 0 && r.Rank() >= min.Rank()
}

func (r Role) Valid() bool {
	return r.Rank() > 0
}

// RoleDescriptor describes a role for the /roles listing
type RoleDescriptor struct {
	Code        Role   `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultRoles defines the roles known to the system, lowest first
var DefaultRoles = []RoleDescriptor{
	{
		Code:        RoleCashier,
		Name:        "Cashier",
		Description: "Sales, stock intake and own shifts",
	},
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Catalog management, analytics and cashier accounts",
	},
	{
		Code:        RoleMainAdmin,
		Name:        "Main Administrator",
		Description: "Full system access including administrator accounts",
	},
}
