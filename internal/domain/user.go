package domain

type Role string

const (
	RoleDonor     Role = "donor"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
	// RoleUnknown is the least-privileged fallback used when the directory
	// has no record for an authenticated identity.
	RoleUnknown Role = "unknown"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}

type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "active"
	AccountStatusBlocked AccountStatus = "blocked"
)

func (s AccountStatus) Valid() bool {
	return s == AccountStatusActive || s == AccountStatusBlocked
}

// PlaceholderLocation is written into the location fields of directory
// records synthesized on a first federated login.
const PlaceholderLocation = "Not Set"

// User is the authoritative directory record for an account. Email is the
// primary key and is never mutated after creation.
type User struct {
	Email      string        `json:"email"`
	Name       string        `json:"name"`
	BloodGroup string        `json:"bloodGroup"`
	District   string        `json:"district"`
	Upazila    string        `json:"upazila"`
	Role       Role          `json:"role"`
	Status     AccountStatus `json:"status"`
	AvatarURL  string        `json:"avatarUrl"`
	CreatedOn  string        `json:"createdOn"`
	UpdatedOn  string        `json:"updatedOn"`
}

// RoleStatus is the projection the reconciler reads on every session change.
type RoleStatus struct {
	Role   Role          `json:"role"`
	Status AccountStatus `json:"status"`
}

var bloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

func ValidBloodGroup(bg string) bool {
	for _, g := range bloodGroups {
		if g == bg {
			return true
		}
	}
	return false
}

// BloodGroups returns the closed set of accepted blood group labels.
func BloodGroups() []string {
	out := make([]string, len(bloodGroups))
	copy(out, bloodGroups)
	return out
}
