package handler

import (
	"embed"
	"html/template"
	"strings"

	"transit-admin/internal/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

// page carries the fields the layout needs on every render.
type page struct {
	Title     string
	AdminName string
}

// Templates parses the console's embedded HTML templates.
func Templates() *template.Template {
	funcs := template.FuncMap{
		"rolesHolding": rolesHolding,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))
}

// rolesHolding returns the space-joined roles that may hold the
// permission. The edit page script reads it to swap the visible
// checkbox set when the role select changes.
func rolesHolding(p domain.Permission) string {
	var roles []string
	for _, r := range domain.Roles() {
		for _, q := range domain.RolePermissions[r] {
			if q == p {
				roles = append(roles, string(r))
				break
			}
		}
	}
	return strings.Join(roles, " ")
}
