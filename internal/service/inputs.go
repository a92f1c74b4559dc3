package service

import (
	"errors"

	ozzo "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"account-api/internal/domain"
	"account-api/internal/validation"
)

const (
	msgEmailInvalid     = "Email is not valid"
	msgPasswordLength   = "Password must be at least 4 characters long"
	msgPasswordMismatch = "Passwords do not match"
	msgPasswordBlank    = "Password cannot be blank"
	msgNameRequired     = "Name is required"

	minPasswordLength = 4
)

func emailRules() []ozzo.Rule {
	return []ozzo.Rule{
		ozzo.Required.Error(msgEmailInvalid),
		is.Email.Error(msgEmailInvalid),
	}
}

func passwordRules() []ozzo.Rule {
	return []ozzo.Rule{
		ozzo.Required.Error(msgPasswordLength),
		ozzo.Length(minPasswordLength, 0).Error(msgPasswordLength),
	}
}

func confirmRules(password string) []ozzo.Rule {
	return []ozzo.Rule{
		ozzo.Required.Error(msgPasswordMismatch),
		ozzo.By(func(value interface{}) error {
			if s, _ := value.(string); s != password {
				return errors.New(msgPasswordMismatch)
			}
			return nil
		}),
	}
}

// ProfileFields are the optional profile attributes accepted on signup and
// profile update.
type ProfileFields struct {
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Location string `json:"location"`
	Website  string `json:"website"`
}

func (p ProfileFields) toDomain() domain.Profile {
	return domain.Profile{
		Name:     p.Name,
		Gender:   p.Gender,
		Location: p.Location,
		Website:  p.Website,
	}
}

// SignupInput is the body of POST /signup.
type SignupInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	ProfileFields
}

// Validate reports every invalid field at once.
func (in SignupInput) Validate(requireName bool) error {
	var nameRules []ozzo.Rule
	if requireName {
		nameRules = append(nameRules, ozzo.Required.Error(msgNameRequired))
	}
	err := ozzo.ValidateStruct(&in,
		ozzo.Field(&in.Email, emailRules()...),
		ozzo.Field(&in.Password, passwordRules()...),
		ozzo.Field(&in.ConfirmPassword, confirmRules(in.Password)...),
		ozzo.Field(&in.Name, nameRules...),
	)
	return validation.Collect(err, map[string]any{
		"email":           in.Email,
		"password":        in.Password,
		"confirmPassword": in.ConfirmPassword,
		"name":            in.Name,
	})
}

// LoginInput is the body of POST /login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) Validate() error {
	err := ozzo.ValidateStruct(&in,
		ozzo.Field(&in.Email, emailRules()...),
		ozzo.Field(&in.Password, ozzo.Required.Error(msgPasswordBlank)),
	)
	return validation.Collect(err, map[string]any{
		"email":    in.Email,
		"password": in.Password,
	})
}

// ProfileInput is the body of POST /user/update/profile. Absent fields
// overwrite the stored value with an empty string.
type ProfileInput struct {
	Email string `json:"email"`
	ProfileFields
}

func (in ProfileInput) Validate() error {
	err := ozzo.ValidateStruct(&in,
		ozzo.Field(&in.Email, emailRules()...),
	)
	return validation.Collect(err, map[string]any{"email": in.Email})
}

// PasswordInput is the body of the password update and reset endpoints.
type PasswordInput struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (in PasswordInput) Validate() error {
	err := ozzo.ValidateStruct(&in,
		ozzo.Field(&in.Password, passwordRules()...),
		ozzo.Field(&in.ConfirmPassword, confirmRules(in.Password)...),
	)
	return validation.Collect(err, map[string]any{
		"password":        in.Password,
		"confirmPassword": in.ConfirmPassword,
	})
}

// ForgotPasswordInput is the body of POST /user/forgot/password.
type ForgotPasswordInput struct {
	Email string `json:"email"`
}

func (in ForgotPasswordInput) Validate() error {
	err := ozzo.ValidateStruct(&in,
		ozzo.Field(&in.Email, emailRules()...),
	)
	return validation.Collect(err, map[string]any{"email": in.Email})
}
