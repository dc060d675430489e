package listing

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kunal1274/fms-dev-sub000/internal/platform/httpx"
	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

type masterForm struct {
	Code     string `validate:"required,max=32"`
	Name     string `validate:"required,max=200"`
	Email    string `validate:"omitempty,email"`
	Currency string `validate:"omitempty,len=3"`
}

type documentForm struct {
	Code     string `validate:"max=64"`
	Currency string `validate:"omitempty,len=3"`
}

// FormError lists the payload fields that failed validation.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// Is reports FormError as a validation failure.
func (e *FormError) Is(target error) bool {
	return target == httpx.ErrValidation
}

// validatePayload checks the canonical fields of payload before it reaches the backend.
func validatePayload(v *validator.Validate, kind records.Kind, payload records.Raw) error {
	rec := records.Normalize(payload, kind)
	var form any = masterForm{Code: rec.Code, Name: rec.Name, Email: rec.Email, Currency: rec.Currency}
	if kind.IsDocument() {
		form = documentForm{Code: rec.Code, Currency: rec.Currency}
	}
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &FormError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[strings.ToLower(fe.Field())] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "len":
		return "must be " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	return "is invalid"
}
