package validation

import (
	"regexp"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Letters, digits, spaces and common professional punctuation: . ' - / & ( ) , + #
var titleRegex = regexp.MustCompile(`^[\p{L}0-9 .'/&(),+#-]+$`)

// New returns a validator with the custom rules registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_title", ValidTitle)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("not_future", NotFuture)
}

// ValidTitle accepts job titles and company names.
func ValidTitle(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return titleRegex.MatchString(val)
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, r := range val {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// NotFuture rejects dates after today. Zero values pass so the rule composes with omitempty.
func NotFuture(fl validator.FieldLevel) bool {
	var t time.Time
	switch v := fl.Field().Interface().(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return true
		}
		t = *v
	default:
		return false
	}
	if t.IsZero() {
		return true
	}
	endOfToday := time.Now().Truncate(24 * time.Hour).Add(24 * time.Hour)
	return t.Before(endOfToday)
}
