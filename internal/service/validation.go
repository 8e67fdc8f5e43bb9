package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
)

var translator ut.Translator

func init() {
	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")
}

// NewValidator returns a validator that reports fields by their JSON names with English messages.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = enTranslations.RegisterDefaultTranslations(v, translator)
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterTranslation("notblank", translator,
		func(ut ut.Translator) error {
			return ut.Add("notblank", "{0} must not be blank", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("notblank", fe.Field())
			return msg
		},
	)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError converts validator output into a 400 carrying per-field messages.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	fields := make(map[string]interface{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fieldPath(fe)] = fe.Translate(translator)
	}
	first := fieldErrs[0]
	return appErrors.WithDetails(appErrors.ErrValidation, first.Translate(translator), map[string]interface{}{"fields": fields})
}

// fieldPath drops the root struct name from the namespace, e.g. "payload.guestName".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// fieldError is a validation failure for a single field outside struct tags.
func fieldError(field, message string) error {
	return appErrors.WithDetails(appErrors.ErrValidation, message, map[string]interface{}{
		"fields": map[string]interface{}{field: message},
	})
}
