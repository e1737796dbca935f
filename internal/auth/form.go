package auth

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fragmede/trackside/internal/api"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegistrationForm is what the registration view collects. Validate it
// before calling Session.Register; the session does not see ConfirmPassword.
type RegistrationForm struct {
	Name            string             `validate:"required"`
	Email           string             `validate:"required,email"`
	Password        string             `validate:"required"`
	ConfirmPassword string             `validate:"eqfield=Password"`
	MembershipType  api.MembershipType `validate:"oneof=basic premium elite"`
}

// Validate returns a human-readable message for the first failing rule, or
// "" if the form is complete.
func (f RegistrationForm) Validate() string {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)

	return firstError(f)
}

// LoginForm is what the login view collects.
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Validate returns a message for the first failing rule, or "".
func (f LoginForm) Validate() string {
	f.Email = strings.TrimSpace(f.Email)
	return firstError(f)
}

// ProfileForm is what the profile editor collects.
type ProfileForm struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
}

// Validate returns a message for the first failing rule, or "".
func (f ProfileForm) Validate() string {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	return firstError(f)
}

// Changes returns the fields that differ from u, and false when there are
// none.
func (f ProfileForm) Changes(u api.User) (api.ProfileUpdate, bool) {
	var upd api.ProfileUpdate
	if name := strings.TrimSpace(f.Name); name != u.Name {
		upd.Name = &name
	}
	if email := strings.TrimSpace(f.Email); email != u.Email {
		upd.Email = &email
	}
	return upd, upd.Name != nil || upd.Email != nil
}

func firstError(form interface{}) string {
	err := validate.Struct(form)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgUnexpected
	}
	return fieldMessage(verrs[0])
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "Please enter a valid email address."
	case "eqfield":
		return "Passwords do not match."
	case "oneof":
		return "Please choose a membership type: basic, premium or elite."
	default:
		return label + " is invalid."
	}
}

var fieldLabels = map[string]string{
	"Name":            "Name",
	"Email":           "Email",
	"Password":        "Password",
	"ConfirmPassword": "Password confirmation",
	"MembershipType":  "Membership type",
}
