package domain

// Roles shipped with the clinic. Staff roles are open-ended: any role other
// than RoleParent is treated as staff.
const (
	RoleAdmin     = "admin"
	RoleOT        = "OT"
	RoleSLP       = "SLP"
	RoleECE       = "ECE"
	RoleAssistant = "Assistant"
	RoleParent    = "parent"
)

// Child-link sentinels.
const (
	ChildLinkAll  = "All"  // staff, unrestricted
	ChildLinkNone = "None" // parent with no child assigned
)

// KnownRoles is the role list offered by the admin form.
var KnownRoles = []string{RoleAdmin, RoleOT, RoleSLP, RoleECE, RoleAssistant, RoleParent}

// User maps the users table.
// Password is stored and compared in plaintext; this is a known weakness of
// the clinic tool and is kept as is.
type User struct {
	Username  string `db:"username"` // PK
	Password  string `db:"password"`
	Role      string `db:"role"`
	ChildLink string `db:"child_link"`
}

// Identity returns the session identity derived from the user row.
func (u *User) Identity() Identity {
	return Identity{Username: u.Username, Role: u.Role, ChildLink: u.ChildLink}
}

// Identity is the per-session (role, child_link) pair, resolved once at login
// and passed explicitly into every service call.
type Identity struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	ChildLink string `json:"child_link"`
}

// Scoped reports whether the identity is restricted to a single child.
func (i Identity) Scoped() bool {
	return i.ChildLink != ChildLinkAll
}
