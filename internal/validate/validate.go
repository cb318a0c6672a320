// Package validate checks request payloads before they leave the client.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const passwordSpecials = "!@#$%^&*"

// FieldError describes one failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Errors is returned when a struct fails validation.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

var (
	once     sync.Once
	instance *validator.Validate
	trans    ut.Translator
	initErr  error
)

func setup() {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return Password(fl.Field().String())
	}); err != nil {
		initErr = fmt.Errorf("register password rule: %w", err)
		return
	}

	locale := en.New()
	tr, _ := ut.New(locale, locale).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, tr); err != nil {
		initErr = fmt.Errorf("register translations: %w", err)
		return
	}
	if err := v.RegisterTranslation("password", tr,
		func(t ut.Translator) error {
			return t.Add("password", "{0} must be at least 8 characters and contain a number and one of "+passwordSpecials, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("password", fe.Field())
			return msg
		},
	); err != nil {
		initErr = fmt.Errorf("register password translation: %w", err)
		return
	}

	instance = v
	trans = tr
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	if s == nil {
		return errors.New("validation target cannot be nil")
	}
	once.Do(setup)
	if initErr != nil {
		return initErr
	}

	err := instance.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fe.Translate(trans),
		})
	}
	return out
}

// Email reports whether s is a syntactically valid email address.
func Email(s string) bool {
	once.Do(setup)
	if initErr != nil {
		return false
	}
	return instance.Var(s, "required,email") == nil
}

// Password reports whether s is at least 8 characters long, uses only ASCII
// letters, digits and the specials !@#$%^&*, and contains at least one digit
// and one special.
func Password(s string) bool {
	if len(s) < 8 {
		return false
	}
	var digit, special bool
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return digit && special
}
