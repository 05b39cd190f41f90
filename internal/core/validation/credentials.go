// Package validation checks registration input before any I/O happens.
//
// Rules are applied in a fixed order and the first failing rule decides the
// returned kind:
//
//	1. all fields present        -> domain.ErrMissingField
//	2. 3 <= len(username) <= 20  -> domain.ErrUsernameLength
//	3. username is [A-Za-z0-9_]+ -> domain.ErrUsernameCharset
//	4. loose email shape         -> domain.ErrEmailFormat
//	5. len(password) >= 8        -> domain.ErrPasswordLength
package validation

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/99minutos/auth-core/internal/core/domain"
)

const (
	TagUsername   = "username"
	TagLooseEmail = "looseemail"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	// \s is ASCII-only in RE2; \pZ adds Unicode separators such as U+00A0.
	emailPattern    = regexp.MustCompile(`^[^\s\pZ@]+@[^\s\pZ@]+\.[^\s\pZ@]+$`)
)

var engine = newEngine()

func newEngine() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation(TagUsername, func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation(TagLooseEmail, func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// Engine returns the shared validator with the custom username and email tags
// registered. It is safe for concurrent use.
func Engine() *validator.Validate {
	return engine
}

// min and max count runes, not bytes or UTF-16 units.
type registration struct {
	Username string `validate:"required,min=3,max=20,username"`
	Email    string `validate:"required,looseemail"`
	Password string `validate:"required,min=8"`
}

// ValidateRegistration returns nil or a *domain.ValidationError wrapping the
// kind of the first rule that failed.
func ValidateRegistration(username, email, password string) error {
	err := engine.Struct(registration{Username: username, Email: email, Password: password})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	var first *domain.ValidationError
	firstRank := len(ruleOrder)
	for _, fe := range fieldErrs {
		kind := kindOf(fe)
		if r := rank(kind); r < firstRank {
			firstRank = r
			first = &domain.ValidationError{Field: strings.ToLower(fe.StructField()), Kind: kind}
		}
	}
	if first == nil {
		return err
	}
	if first.Kind == domain.ErrMissingField {
		first.Field = ""
	}
	return first
}

var ruleOrder = []error{
	domain.ErrMissingField,
	domain.ErrUsernameLength,
	domain.ErrUsernameCharset,
	domain.ErrEmailFormat,
	domain.ErrPasswordLength,
}

func rank(kind error) int {
	for i, k := range ruleOrder {
		if k == kind {
			return i
		}
	}
	return len(ruleOrder)
}

func kindOf(fe validator.FieldError) error {
	if fe.Tag() == "required" {
		return domain.ErrMissingField
	}
	switch fe.StructField() {
	case "Username":
		if fe.Tag() == TagUsername {
			return domain.ErrUsernameCharset
		}
		return domain.ErrUsernameLength
	case "Email":
		return domain.ErrEmailFormat
	case "Password":
		return domain.ErrPasswordLength
	}
	return nil
}
