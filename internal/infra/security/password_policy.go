package security

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const (
	minPasswordLength = 8
	minStrengthScore  = 2
)

// PasswordPolicy enforces minimum length and zxcvbn strength at registration.
type PasswordPolicy struct {
	minLength int
	minScore  int
}

// NewPasswordPolicy returns the default registration password policy.
func NewPasswordPolicy() *PasswordPolicy {
	return &PasswordPolicy{
		minLength: minPasswordLength,
		minScore:  minStrengthScore,
	}
}

// Validate reports the first policy violation. userInputs (email, full name)
// are penalized when reused inside the password.
func (p *PasswordPolicy) Validate(password string, userInputs ...string) error {
	if len(password) < p.minLength {
		return fmt.Errorf("password must be at least %d characters", p.minLength)
	}

	result := zxcvbn.PasswordStrength(password, userInputs)
	if result.Score < p.minScore {
		return fmt.Errorf("password is too weak")
	}

	return nil
}
