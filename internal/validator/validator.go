package validator

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"transit-admin/internal/domain"
	"transit-admin/internal/form"
)

var validRoles = []interface{}{
	domain.RoleClient,
	domain.RoleCustomerService,
	domain.RoleRouteAdmin,
	domain.RoleCompanyAdmin,
	domain.RoleSystemAdmin,
}

// Validator provides validation methods for the edit-user form.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateEditUserForm validates a submitted edit-user form. Errors are
// keyed by field name and carry stable codes as their messages.
func (v *Validator) ValidateEditUserForm(f *form.EditUserForm) error {
	errs := validation.Errors{}

	err := validation.ValidateStruct(f,
		validation.Field(&f.Name,
			validation.Required.Error("name_required"),
		),
		validation.Field(&f.Email,
			validation.Required.Error("email_required"),
			is.Email.Error("invalid_email_format"),
		),
		validation.Field(&f.Role,
			validation.Required.Error("role_required"),
			validation.In(validRoles...).Error("invalid_role"),
		),
	)
	if err != nil {
		ve, ok := err.(validation.Errors)
		if !ok {
			return err
		}
		for field, fieldErr := range ve {
			errs[field] = fieldErr
		}
	}

	// Conditional rule: customer service accounts must carry a department
	if f.Role.RequiresDepartment() && f.Department == "" {
		errs["department"] = validation.NewError("department_required", "department_required")
	}

	// Conditional rule: company administrators must carry a company
	if f.Role.RequiresCompany() && f.Company == "" {
		errs["company"] = validation.NewError("company_required", "company_required")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// FieldErrors flattens ozzo validation errors into a field-to-code map
// for rendering next to the corresponding inputs.
func FieldErrors(err error) map[string]string {
	fields := make(map[string]string)
	if err == nil {
		return fields
	}

	if ve, ok := err.(validation.Errors); ok {
		for field, fieldErr := range ve {
			fields[field] = fieldErr.Error()
		}
		return fields
	}

	fields["form"] = err.Error()
	return fields
}
