package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// String length limits
const (
	MaxLoginLength        = 64
	MinLoginLength        = 3
	MaxPasswordLength     = 128
	MaxIDLength           = 128
	MaxTitleLength        = 128
	MaxComponentKeyLength = 64
)

// Regular expressions for validation
var (
	// ComponentKeyPattern is the shape of a module identifier: lowercase
	// words separated by single dashes (materials, material-groups).
	ComponentKeyPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	// LoginPattern allows alphanumeric, dots and underscores
	LoginPattern = regexp.MustCompile(`^[a-zA-Z0-9._]+$`)
	// PostalCodePattern accepts 00000-000 and 00000000
	PostalCodePattern = regexp.MustCompile(`^\d{5}-?\d{3}$`)
	nonDigits         = regexp.MustCompile(`\D`)
)

// ValidationError reports input rejected before it reaches the backend.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the ERP-specific tags
// registered: document, postalcode and login.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("document", func(fl validator.FieldLevel) bool {
			return IsDocument(fl.Field().String())
		})
		_ = v.RegisterValidation("postalcode", func(fl validator.FieldLevel) bool {
			return PostalCodePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("login", func(fl validator.FieldLevel) bool {
			return ValidateLogin(fl.Field().String()) == nil
		})
		validate = v
	})
	return validate
}

// ValidateStruct runs the struct's validate tags and flattens the result
// into a single readable error.
func ValidateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return invalidf("validation failed: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s is not a valid email", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

// IsDocument accepts an 11-digit personal or 14-digit company tax number,
// with or without punctuation. Only the length is checked.
func IsDocument(value string) bool {
	digits := nonDigits.ReplaceAllString(value, "")
	return len(digits) == 11 || len(digits) == 14
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return invalidf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil // Optional field, empty is OK
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return invalidf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return invalidf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return invalidf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateLogin validates a login name
func ValidateLogin(login string) error {
	if err := ValidateString(login, "login", MinLoginLength, MaxLoginLength, true); err != nil {
		return err
	}
	if !LoginPattern.MatchString(login) {
		return invalidf("login contains invalid characters (only alphanumeric, dots and underscores allowed)")
	}
	return nil
}

// ValidatePassword only bounds the length; strength is the backend's call.
func ValidatePassword(password string) error {
	return ValidateString(password, "password", 1, MaxPasswordLength, true)
}

// ValidateComponentKey validates a module identifier
func ValidateComponentKey(key string) error {
	if err := ValidateString(key, "component key", 1, MaxComponentKeyLength, true); err != nil {
		return err
	}
	if !ComponentKeyPattern.MatchString(key) {
		return invalidf("component key %q must be lowercase words separated by dashes", key)
	}
	return nil
}

// ValidateID validates an opaque id such as a tab id
func ValidateID(id, fieldName string) error {
	return ValidateString(id, fieldName, 1, MaxIDLength, true)
}
