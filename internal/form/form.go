// Package form holds the edit-user form state and its dirty tracking.
package form

import (
	"strings"

	"transit-admin/internal/domain"
)

// Values carries the raw field values posted by the edit form.
type Values struct {
	Name        string
	Email       string
	Phone       string
	Role        string
	Department  string
	Company     string
	Permissions []string
	Active      bool
}

// EditUserForm mirrors the editable attributes of a user record together
// with the snapshot it was loaded from. Dirty and Changes compare the
// current values against that snapshot.
type EditUserForm struct {
	UserID      string              `json:"-"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone"`
	Role        domain.Role         `json:"role"`
	Department  string              `json:"department"`
	Company     string              `json:"company"`
	Permissions []domain.Permission `json:"permissions"`
	Active      bool                `json:"active"`

	original domain.UserUpdate
}

// FromUser populates a form from a freshly loaded user record.
func FromUser(u *domain.User) *EditUserForm {
	f := &EditUserForm{
		UserID:      u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		Department:  u.Department,
		Company:     u.Company,
		Permissions: domain.NormalizePermissions(u.Role, u.Permissions),
		Active:      u.Active,
	}
	f.original = f.Payload()
	return f
}

// FromValues populates a form from submitted values, keeping the record
// the page was loaded from as the snapshot to diff against. Permissions
// are normalized once the submitted role is valid; an invalid role keeps
// them raw so the re-rendered form shows what was posted.
func FromValues(u *domain.User, v Values) *EditUserForm {
	f := FromUser(u)
	f.Name = strings.TrimSpace(v.Name)
	f.Email = strings.TrimSpace(v.Email)
	f.Phone = strings.TrimSpace(v.Phone)
	f.Role = domain.Role(v.Role)
	f.Department = strings.TrimSpace(v.Department)
	f.Company = strings.TrimSpace(v.Company)
	f.Active = v.Active

	f.Permissions = make([]domain.Permission, 0, len(v.Permissions))
	for _, p := range v.Permissions {
		f.Permissions = append(f.Permissions, domain.Permission(p))
	}
	if f.Role.Valid() {
		f.Permissions = domain.NormalizePermissions(f.Role, f.Permissions)
	}
	return f
}

// Payload builds the update document for the current field values.
// Permissions are normalized against the selected role, and the
// role-conditional attributes are dropped for roles that do not use them.
func (f *EditUserForm) Payload() domain.UserUpdate {
	u := domain.UserUpdate{
		Name:        f.Name,
		Email:       f.Email,
		Phone:       f.Phone,
		Role:        f.Role,
		Permissions: domain.NormalizePermissions(f.Role, f.Permissions),
		Active:      f.Active,
	}
	if f.Role.RequiresDepartment() {
		u.Department = f.Department
	}
	if f.Role.RequiresCompany() {
		u.Company = f.Company
	}
	return u
}

// Dirty reports whether submitting the form would send a document that
// differs from the loaded snapshot.
func (f *EditUserForm) Dirty() bool {
	return !f.Payload().Equal(f.original)
}

// Changes lists the fields whose submitted value differs from the
// snapshot.
func (f *EditUserForm) Changes() []string {
	cur := f.Payload()

	var changed []string
	if cur.Name != f.original.Name {
		changed = append(changed, "name")
	}
	if cur.Email != f.original.Email {
		changed = append(changed, "email")
	}
	if cur.Phone != f.original.Phone {
		changed = append(changed, "phone")
	}
	if cur.Role != f.original.Role {
		changed = append(changed, "role")
	}
	if cur.Department != f.original.Department {
		changed = append(changed, "department")
	}
	if cur.Company != f.original.Company {
		changed = append(changed, "company")
	}
	if !permissionsEqual(cur.Permissions, f.original.Permissions) {
		changed = append(changed, "permissions")
	}
	if cur.Active != f.original.Active {
		changed = append(changed, "active")
	}
	return changed
}

// HasPermission reports whether the form currently carries the
// permission. The template uses it to mark checkboxes.
func (f *EditUserForm) HasPermission(p domain.Permission) bool {
	for _, q := range f.Permissions {
		if q == p {
			return true
		}
	}
	return false
}

// AvailablePermissions lists the permissions the selected role may hold,
// falling back to the snapshot's role while the submitted role is
// invalid.
func (f *EditUserForm) AvailablePermissions() []domain.Permission {
	if f.Role.Valid() {
		return domain.PermissionsForRole(f.Role)
	}
	return domain.PermissionsForRole(f.original.Role)
}

// Offers reports whether the selected role may hold the permission. The
// edit page uses it to show only the role's own checkboxes.
func (f *EditUserForm) Offers(p domain.Permission) bool {
	for _, q := range f.AvailablePermissions() {
		if q == p {
			return true
		}
	}
	return false
}

func permissionsEqual(a, b []domain.Permission) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
