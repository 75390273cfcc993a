// Where: internal/scaffold/name.go
// What: CamelCase name validation and case derivations.
// Why: Generated action names must be valid Go identifiers and catalog keys.
package scaffold

import (
	"fmt"
	"strings"
	"unicode"
)

// Name is a validated CamelCase identifier for generated components.
type Name struct {
	raw string
}

// ParseName validates a user-supplied component name. Separators are
// rejected outright because every derived form is computed from the
// CamelCase word boundaries.
func ParseName(raw string) (Name, error) {
	if raw == "" {
		return Name{}, fmt.Errorf("name cannot be empty")
	}
	for _, c := range []string{"_", " ", "-"} {
		if strings.Contains(raw, c) {
			return Name{}, fmt.Errorf("name cannot contain %q, names must be CamelCase, i.e. %q instead of %q",
				c, "MyEvent", "My"+c+"Event")
		}
	}
	for _, r := range raw {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return Name{}, fmt.Errorf("name cannot contain special characters")
		}
	}
	if !unicode.IsUpper(rune(raw[0])) {
		return Name{}, fmt.Errorf("name must start with an uppercase letter, i.e. %q", "MyAction")
	}
	return Name{raw: raw}, nil
}

// Camel returns the name as given, e.g. "MyAction".
func (n Name) Camel() string { return n.raw }

// Snake returns the lower snake_case form, e.g. "my_action".
func (n Name) Snake() string { return n.separated('_') }

// Kebab returns the lower kebab-case form, e.g. "my-action".
func (n Name) Kebab() string { return n.separated('-') }

func (n Name) separated(sep rune) string {
	var b strings.Builder
	for i, r := range n.raw {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(sep)
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
