package validator

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minEmailLength    = 3
	maxEmailLength    = 255
	minPasswordLength = 8
	maxPasswordLength = 72

	errUsernameCharsFmt = "must contain only letters, digits, underscores, dots or hyphens"
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

var (
	usernameRules = []validation.Rule{
		validation.Required,
		validation.Length(minUsernameLength, maxUsernameLength),
		validation.Match(usernameRegex).Error(errUsernameCharsFmt),
	}
	emailRules = []validation.Rule{
		validation.Required,
		validation.Length(minEmailLength, maxEmailLength),
		is.Email,
	}
	passwordRules = []validation.Rule{
		validation.Required,
		validation.Length(minPasswordLength, maxPasswordLength),
	}
)

func Username(username string) error {
	return validation.Validate(username, usernameRules...)
}

func Email(email string) error {
	return validation.Validate(email, emailRules...)
}

func Password(password string) error {
	return validation.Validate(password, passwordRules...)
}

// Registration is the payload checked before an account is created.
type Registration struct {
	Username string
	Email    string
	Password string
}

func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, usernameRules...),
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Password, passwordRules...),
	)
}

// FieldErrors flattens an ozzo validation result into field -> message.
// Errors that are not per-field are returned under the "error" key.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		out := make(map[string]string, len(fieldErrs))
		for field, fieldErr := range fieldErrs {
			out[strings.ToLower(field)] = fieldErr.Error()
		}
		return out
	}

	return map[string]string{"error": err.Error()}
}
