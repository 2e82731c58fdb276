package domain

import "time"

// Role identifies the access level of a user account.
type Role string

// All roles known to the TMS API.
const (
	RoleClient          Role = "client"
	RoleCustomerService Role = "customer_service"
	RoleRouteAdmin      Role = "route_admin"
	RoleCompanyAdmin    Role = "company_admin"
	RoleSystemAdmin     Role = "system_admin"
)

// Roles lists all valid roles in display order.
func Roles() []Role {
	return []Role{
		RoleClient,
		RoleCustomerService,
		RoleRouteAdmin,
		RoleCompanyAdmin,
		RoleSystemAdmin,
	}
}

// ParseRole maps a raw role string to a known Role. Unknown values fall
// back to RoleClient, the least privileged role.
func ParseRole(s string) Role {
	if r := Role(s); r.Valid() {
		return r
	}
	return RoleClient
}

// Valid checks if a role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleCustomerService, RoleRouteAdmin, RoleCompanyAdmin, RoleSystemAdmin:
		return true
	}
	return false
}

// Label returns the display name for the role.
func (r Role) Label() string {
	switch r {
	case RoleClient:
		return "Client"
	case RoleCustomerService:
		return "Customer Service"
	case RoleRouteAdmin:
		return "Route Administrator"
	case RoleCompanyAdmin:
		return "Company Administrator"
	case RoleSystemAdmin:
		return "System Administrator"
	}
	return string(r)
}

// RequiresDepartment reports whether accounts with this role must carry
// a department.
func (r Role) RequiresDepartment() bool {
	return r == RoleCustomerService
}

// RequiresCompany reports whether accounts with this role must carry a
// company.
func (r Role) RequiresCompany() bool {
	return r == RoleCompanyAdmin
}

// Permission is a capability token assigned to a user account.
type Permission string

// All permissions known to the TMS API.
const (
	PermReadRoutes      Permission = "read_routes"
	PermManageRoutes    Permission = "manage_routes"
	PermReadSchedules   Permission = "read_schedules"
	PermManageSchedules Permission = "manage_schedules"
	PermReadUsers       Permission = "read_users"
	PermManageUsers     Permission = "manage_users"
	PermCreateBookings  Permission = "create_bookings"
	PermManageBookings  Permission = "manage_bookings"
	PermManageFleet     Permission = "manage_fleet"
	PermManageDrivers   Permission = "manage_drivers"
	PermRespondTickets  Permission = "respond_tickets"
	PermReadReports     Permission = "read_reports"
	PermManageSystem    Permission = "manage_system"
)

// Permissions lists every known permission in display order.
func Permissions() []Permission {
	return []Permission{
		PermReadRoutes,
		PermManageRoutes,
		PermReadSchedules,
		PermManageSchedules,
		PermReadUsers,
		PermManageUsers,
		PermCreateBookings,
		PermManageBookings,
		PermManageFleet,
		PermManageDrivers,
		PermRespondTickets,
		PermReadReports,
		PermManageSystem,
	}
}

var permissionLabels = map[Permission]string{
	PermReadRoutes:      "View routes",
	PermManageRoutes:    "Manage routes",
	PermReadSchedules:   "View schedules",
	PermManageSchedules: "Manage schedules",
	PermReadUsers:       "View users",
	PermManageUsers:     "Manage users",
	PermCreateBookings:  "Create bookings",
	PermManageBookings:  "Manage bookings",
	PermManageFleet:     "Manage fleet",
	PermManageDrivers:   "Manage drivers",
	PermRespondTickets:  "Respond to tickets",
	PermReadReports:     "View reports",
	PermManageSystem:    "Manage system settings",
}

// Label returns the display name for the permission.
func (p Permission) Label() string {
	if label, ok := permissionLabels[p]; ok {
		return label
	}
	return string(p)
}

// RolePermissions maps each role to the permissions an account with that
// role may hold, in canonical order.
var RolePermissions = map[Role][]Permission{
	RoleClient: {
		PermReadRoutes,
		PermReadSchedules,
		PermCreateBookings,
	},
	RoleCustomerService: {
		PermReadRoutes,
		PermReadSchedules,
		PermReadUsers,
		PermManageBookings,
		PermRespondTickets,
	},
	RoleRouteAdmin: {
		PermReadRoutes,
		PermManageRoutes,
		PermReadSchedules,
		PermManageSchedules,
		PermReadReports,
	},
	RoleCompanyAdmin: {
		PermReadRoutes,
		PermReadSchedules,
		PermManageFleet,
		PermManageDrivers,
		PermReadReports,
	},
	RoleSystemAdmin: {
		PermReadRoutes,
		PermManageRoutes,
		PermReadSchedules,
		PermManageSchedules,
		PermReadUsers,
		PermManageUsers,
		PermManageBookings,
		PermManageFleet,
		PermManageDrivers,
		PermRespondTickets,
		PermReadReports,
		PermManageSystem,
	},
}

// PermissionsForRole returns a copy of the permission set for the role.
func PermissionsForRole(r Role) []Permission {
	perms := RolePermissions[r]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// NormalizePermissions filters perms down to those the role may hold,
// dropping duplicates and unknown tokens and restoring canonical order.
func NormalizePermissions(r Role, perms []Permission) []Permission {
	have := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		have[p] = true
	}

	out := make([]Permission, 0, len(perms))
	for _, p := range RolePermissions[r] {
		if have[p] {
			out = append(out, p)
		}
	}
	return out
}

// User represents a user record as served by the TMS API.
type User struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone,omitempty"`
	Role        Role         `json:"role"`
	Department  string       `json:"department,omitempty"`
	Company     string       `json:"company,omitempty"`
	Permissions []Permission `json:"permissions"`
	Active      bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// UserUpdate is the editable projection of a user record, sent as the
// body of an update call. The API replaces all editable attributes with
// the submitted values.
type UserUpdate struct {
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	Role        Role         `json:"role"`
	Department  string       `json:"department,omitempty"`
	Company     string       `json:"company,omitempty"`
	Permissions []Permission `json:"permissions"`
	Active      bool         `json:"is_active"`
}

// Equal reports whether two updates would submit the same document.
// Permissions are compared element-wise; callers are expected to pass
// normalized permission sets.
func (u UserUpdate) Equal(o UserUpdate) bool {
	if u.Name != o.Name ||
		u.Email != o.Email ||
		u.Phone != o.Phone ||
		u.Role != o.Role ||
		u.Department != o.Department ||
		u.Company != o.Company ||
		u.Active != o.Active {
		return false
	}
	if len(u.Permissions) != len(o.Permissions) {
		return false
	}
	for i := range u.Permissions {
		if u.Permissions[i] != o.Permissions[i] {
			return false
		}
	}
	return true
}
