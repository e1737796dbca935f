package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fragmede/trackside/internal/api"
)

func TestRegistrationForm_Validate(t *testing.T) {
	valid := RegistrationForm{
		Name:            "Jo Runner",
		Email:           "jo@example.org",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		MembershipType:  api.MembershipBasic,
	}
	assert.Empty(t, valid.Validate())

	short := valid
	short.Password, short.ConfirmPassword = "abc", "abc"
	assert.Empty(t, short.Validate(), "the club sets no minimum length")

	tests := []struct {
		name string
		edit func(*RegistrationForm)
		want string
	}{
		{"mismatch", func(f *RegistrationForm) { f.ConfirmPassword = "secret2" }, "Passwords do not match."},
		{"blank name", func(f *RegistrationForm) { f.Name = "   " }, "Name is required."},
		{"bad email", func(f *RegistrationForm) { f.Email = "not-an-email" }, "Please enter a valid email address."},
		{"short mismatch", func(f *RegistrationForm) { f.Password, f.ConfirmPassword = "abc", "abd" }, "Passwords do not match."},
		{"blank password", func(f *RegistrationForm) { f.Password, f.ConfirmPassword = "", "" }, "Password is required."},
		{"unknown tier", func(f *RegistrationForm) { f.MembershipType = "platinum" }, "Please choose a membership type: basic, premium or elite."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.edit(&f)
			assert.Equal(t, tt.want, f.Validate())
		})
	}
}

func TestLoginForm_Validate(t *testing.T) {
	assert.Empty(t, LoginForm{Email: "sarah.johnson@email.com", Password: "password123"}.Validate())
	assert.Equal(t, "Email is required.", LoginForm{Password: "x"}.Validate())
	assert.Equal(t, "Password is required.", LoginForm{Email: "a@b.co"}.Validate())
}

func TestProfileForm(t *testing.T) {
	u := api.User{Name: "Sarah Johnson", Email: "sarah.johnson@email.com"}

	assert.Equal(t, "Name is required.", ProfileForm{Name: " ", Email: u.Email}.Validate())
	assert.Equal(t, "Please enter a valid email address.", ProfileForm{Name: u.Name, Email: "sarah"}.Validate())

	_, changed := ProfileForm{Name: u.Name + " ", Email: u.Email}.Changes(u)
	assert.False(t, changed)

	upd, changed := ProfileForm{Name: "Sarah J", Email: u.Email}.Changes(u)
	assert.True(t, changed)
	if assert.NotNil(t, upd.Name) {
		assert.Equal(t, "Sarah J", *upd.Name)
	}
	assert.Nil(t, upd.Email)
}
