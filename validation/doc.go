// Package validation checks request input and reports failures as a
// ValidationError fault whose metadata lists the offending fields.
//
// # Struct Tag Validation
//
//	type CreateUser struct {
//	    Name  string `json:"name" validate:"required,min=2"`
//	    Email string `json:"email" validate:"required,email"`
//	}
//	err := validation.Struct(req)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("name", name)
//	err := v.Validate()
package validation
