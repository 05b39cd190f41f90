package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/99minutos/auth-core/internal/core/domain"
)

func TestValidateRegistration(t *testing.T) {
	cases := []struct {
		name     string
		username string
		email    string
		password string
		want     error
	}{
		{"valid", "bob01", "bob@x.com", "longenough1", nil},
		{"valid underscore", "a_b", "a@b.co", "12345678", nil},
		{"valid max length", strings.Repeat("a", 20), "a@b.co", "12345678", nil},
		{"missing username", "", "bob@x.com", "longenough1", domain.ErrMissingField},
		{"missing email", "bob01", "", "longenough1", domain.ErrMissingField},
		{"missing password", "bob01", "bob@x.com", "", domain.ErrMissingField},
		{"missing wins over length", "ab", "", "longenough1", domain.ErrMissingField},
		{"username too short", "ab", "bob@x.com", "longenough1", domain.ErrUsernameLength},
		{"username too long", strings.Repeat("a", 21), "bob@x.com", "longenough1", domain.ErrUsernameLength},
		{"length wins over charset", "a!", "bob@x.com", "longenough1", domain.ErrUsernameLength},
		{"username charset", "bob-01", "bob@x.com", "longenough1", domain.ErrUsernameCharset},
		{"username space", "bob 01", "bob@x.com", "longenough1", domain.ErrUsernameCharset},
		{"charset wins over email", "bob.01", "nope", "short", domain.ErrUsernameCharset},
		{"email no at", "bob01", "bob.x.com", "longenough1", domain.ErrEmailFormat},
		{"email no dot", "bob01", "bob@xcom", "longenough1", domain.ErrEmailFormat},
		{"email space", "bob01", "bo b@x.com", "longenough1", domain.ErrEmailFormat},
		{"email double at", "bob01", "bob@@x.com", "longenough1", domain.ErrEmailFormat},
		{"email no-break space", "bob01", "a\u00a0b@x.com", "longenough1", domain.ErrEmailFormat},
		{"email ideographic space", "bob01", "ab@x\u3000y.com", "longenough1", domain.ErrEmailFormat},
		{"email wins over password", "bob01", "bob", "short", domain.ErrEmailFormat},
		{"password short", "bob01", "bob@x.com", "1234567", domain.ErrPasswordLength},
		{"password counted in runes", "bob01", "bob@x.com", "\U0001F600\U0001F600\U0001F600\U0001F600", domain.ErrPasswordLength},
		{"password eight runes", "bob01", "bob@x.com", "ñññññññ1", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRegistration(tc.username, tc.email, tc.password)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !domain.IsValidation(err) {
				t.Fatalf("expected validation family, got %v", err)
			}
		})
	}
}

func TestValidateRegistration_UsernameAndPasswordRulesIgnoreEmail(t *testing.T) {
	for _, email := range []string{"bob@x.com", "broken"} {
		if err := ValidateRegistration("ab", email, "longenough1"); !errors.Is(err, domain.ErrUsernameLength) {
			t.Fatalf("email %q: expected ErrUsernameLength, got %v", email, err)
		}
		if err := ValidateRegistration("bob$", email, "longenough1"); !errors.Is(err, domain.ErrUsernameCharset) {
			t.Fatalf("email %q: expected ErrUsernameCharset, got %v", email, err)
		}
	}
	if err := ValidateRegistration("bob01", "bob@x.com", "short"); err == nil {
		t.Fatalf("expected short password to be rejected")
	}
}

func TestValidateRegistration_ReportsField(t *testing.T) {
	err := ValidateRegistration("bob01", "bob", "longenough1")

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *domain.ValidationError, got %T", err)
	}
	if ve.Field != "email" {
		t.Fatalf("expected field email, got %q", ve.Field)
	}
}

func TestValidateRegistration_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if err := ValidateRegistration("bob-01", "bob@x.com", "longenough1"); !errors.Is(err, domain.ErrUsernameCharset) {
			t.Fatalf("run %d: expected ErrUsernameCharset, got %v", i, err)
		}
	}
}
