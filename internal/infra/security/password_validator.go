package security

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordPolicyError reports a single password policy violation with a
// stable code the API layer can expose.
type PasswordPolicyError struct {
	Code    string
	Message string
}

func (e *PasswordPolicyError) Error() string { return e.Message }

// PasswordRule checks one aspect of the password policy.
type PasswordRule func(password string) error

// PasswordValidator applies rules in order and returns the first violation.
type PasswordValidator struct {
	rules []PasswordRule
}

func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	return &PasswordValidator{rules: append([]PasswordRule(nil), rules...)}
}

func (v *PasswordValidator) Validate(password string) error {
	for _, rule := range v.rules {
		if err := rule(password); err != nil {
			return err
		}
	}
	return nil
}

// DefaultPasswordValidator builds the policy applied at registration and
// password change: a length floor plus a zxcvbn strength floor.
func DefaultPasswordValidator(minLength, minScore int) *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule(minLength),
		StrengthRule(minScore),
	)
}

// MinLengthRule rejects passwords shorter than min runes.
func MinLengthRule(min int) PasswordRule {
	return func(password string) error {
		if len([]rune(password)) < min {
			return &PasswordPolicyError{
				Code:    "min_length",
				Message: fmt.Sprintf("password must be at least %d characters long", min),
			}
		}
		return nil
	}
}

// StrengthRule rejects passwords whose zxcvbn score falls below minScore.
// Scores range 0..4.
func StrengthRule(minScore int) PasswordRule {
	return func(password string) error {
		if minScore <= 0 {
			return nil
		}
		if zxcvbn.PasswordStrength(password, nil).Score < minScore {
			return &PasswordPolicyError{
				Code:    "weak_password",
				Message: "password is too easy to guess",
			}
		}
		return nil
	}
}
