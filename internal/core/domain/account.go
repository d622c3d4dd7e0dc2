package domain

import "time"

// Role is the authority level of an account within the guild.
type Role string

const (
	// RoleCoordinator defines demand, assigns work, and owns settlement data.
	RoleCoordinator Role = "coordinator"
	// RoleContributor reports progress on tasks assigned to it.
	RoleContributor Role = "contributor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCoordinator || r == RoleContributor
}

// Capability is a single permitted action. The set per role is closed:
// presentation code asks the gate, it never branches on the role directly.
type Capability string

const (
	CapManageSettlements Capability = "manage_settlements"
	CapEditDemand        Capability = "edit_demand"
	CapAssignTasks       Capability = "assign_tasks"
	CapCancelTasks       Capability = "cancel_tasks"
	CapDeleteTasks       Capability = "delete_tasks"
	CapReportProgress    Capability = "report_progress"
	CapManageRoster      Capability = "manage_roster"
	CapViewRoster        Capability = "view_roster"
)

var roleCapabilities = map[Role][]Capability{
	RoleCoordinator: {
		CapManageSettlements,
		CapEditDemand,
		CapAssignTasks,
		CapCancelTasks,
		CapDeleteTasks,
		CapReportProgress,
		CapManageRoster,
		CapViewRoster,
	},
	RoleContributor: {
		CapReportProgress,
		CapViewRoster,
	},
}

// CapabilitiesFor returns the closed capability set for a role.
// Unknown roles get no capabilities.
func CapabilitiesFor(role Role) map[Capability]struct{} {
	caps := make(map[Capability]struct{}, len(roleCapabilities[role]))
	for _, c := range roleCapabilities[role] {
		caps[c] = struct{}{}
	}
	return caps
}

// Account models an authenticated guild member. Immutable for the lifetime
// of a session; the role only changes through re-authentication.
type Account struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}
