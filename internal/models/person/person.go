package person

import (
	"slices"
	"time"
)

// Person is a coach, staff member or athlete referenced by tasks.
type Person struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Sport     *string   `json:"sport"`
	Team      *string   `json:"team"`
	Position  *string   `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

type Role string

const (
	RoleCoach   Role = "coach"
	RoleStaff   Role = "staff"
	RoleAthlete Role = "athlete"
)

func Roles() []Role {
	return []Role{RoleCoach, RoleStaff, RoleAthlete}
}

func (r Role) IsValid() bool { return slices.Contains(Roles(), r) }

func (p *Person) IsAthlete() bool {
	return p != nil && p.Role == RoleAthlete
}
