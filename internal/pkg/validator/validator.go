// Package validator validates configuration structures using the "validate" tags.
// Error messages use the "configKey" or "json" tag as the field name.
package validator

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslation "github.com/go-playground/validator/v10/translations/en"

	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

const nestedName = "__nested__"

// Rule is a custom validation rule.
type Rule struct {
	Tag          string
	Func         validator.FuncCtx
	ErrorMessage string
}

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func New(rules ...Rule) *Validator {
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}

	// Register default EN translator
	enLocale := en.New()
	translator, found := ut.New(enLocale, enLocale).GetTranslator("en")
	if !found {
		panic(errors.New("en translator was not found"))
	}
	if err := enTranslation.RegisterDefaultTranslations(v.validate, translator); err != nil {
		panic(errors.Errorf("translator was not registered: %w", err))
	}
	v.translator = translator

	for _, rule := range rules {
		v.registerRule(rule)
	}

	v.validate.RegisterTagNameFunc(fieldName)
	return v
}

// Validate a struct, a slice or a map.
func (v *Validator) Validate(ctx context.Context, value any) error {
	return v.ValidateCtx(ctx, value, "dive", "")
}

// ValidateCtx validates the value using the tag, errors are prefixed by the namespace.
func (v *Validator) ValidateCtx(ctx context.Context, value any, tag string, namespace string) error {
	var err error
	if reflect.Indirect(reflect.ValueOf(value)).Kind() == reflect.Struct {
		err = v.validate.StructCtx(ctx, value)
	} else {
		err = v.validate.VarCtx(ctx, value, tag)
	}

	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		panic(err)
	}

	errs := errors.NewMultiError()
	for _, e := range validationErrs {
		errs.Append(v.translate(e, namespace))
	}
	return errs.ErrorOrNil()
}

func (v *Validator) registerRule(rule Rule) {
	if err := v.validate.RegisterValidationCtx(rule.Tag, rule.Func); err != nil {
		panic(err)
	}

	if rule.ErrorMessage == "" {
		return
	}

	registerFn := func(ut ut.Translator) error {
		return ut.Add(rule.Tag, rule.ErrorMessage, true)
	}
	translateFn := func(ut ut.Translator, fe validator.FieldError) string {
		t, err := ut.T(rule.Tag, fe.Field(), fmt.Sprint(fe.Value()))
		if err != nil {
			return fe.Error()
		}
		return t
	}
	if err := v.validate.RegisterTranslation(rule.Tag, v.translator, registerFn, translateFn); err != nil {
		panic(err)
	}
}

func (v *Validator) translate(e validator.FieldError, namespace string) error {
	name := processNamespace(e.Namespace())
	if namespace != "" {
		name = strings.TrimSuffix(namespace+"."+name, ".")
	}
	msg := e.Translate(v.translator)
	if name != "" {
		msg = strings.Replace(msg, e.Field(), `"`+name+`"`, 1)
	}
	return errors.New(msg)
}

// fieldName is used in error messages: "configKey" tag, "json" tag or the Go field name.
func fieldName(field reflect.StructField) string {
	if field.Anonymous {
		return nestedName
	}
	for _, tag := range []string{"configKey", "json"} {
		name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return field.Name
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

// processNamespace removes the struct name (first part) and nested parts.
func processNamespace(namespace string) string {
	namespace = strings.ReplaceAll(namespace, nestedName+".", "")
	parts := strings.SplitN(namespace, ".", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return ""
}
