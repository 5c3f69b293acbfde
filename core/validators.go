package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Days are the teaching days, in week order.
var Days = []string{"SENIN", "SELASA", "RABU", "KAMIS", "JUMAT", "SABTU"}

// ProgramStudi are the accepted study programs (a "-PJJ" suffix marks distance learning).
var ProgramStudi = []string{"IF", "IT", "SE", "DS"}

var (
	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "only alphanumeric characters and underscores are allowed"
	alphaNumUnderRegex = regexp.MustCompile(`^[\w\s]+$`)

	termTag   = "term"
	termText  = "{0} must look like 2425-1 or 20242025-1"
	termRegex = regexp.MustCompile(`^[0-9]{4}([0-9]{4})?-[0-9]$`)

	hariTag  = "hari"
	hariText = "{0} must be one of SENIN, SELASA, RABU, KAMIS, JUMAT, SABTU"

	prodiTag  = "prodi"
	prodiText = "{0} must be one of IF, IT, SE, DS (optionally suffixed by -PJJ)"

	kodeTag   = "kode"
	kodeText  = "{0} must be exactly 3 uppercase letters"
	kodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	RegisterCustomTranslation(validate, translator, alphaNumUnderTag, alphaNumUnderText)

	_ = validate.RegisterValidation(termTag, termValidation)
	RegisterCustomTranslation(validate, translator, termTag, termText)

	_ = validate.RegisterValidation(hariTag, hariValidation)
	RegisterCustomTranslation(validate, translator, hariTag, hariText)

	_ = validate.RegisterValidation(prodiTag, prodiValidation)
	RegisterCustomTranslation(validate, translator, prodiTag, prodiText)

	_ = validate.RegisterValidation(kodeTag, kodeValidation)
	RegisterCustomTranslation(validate, translator, kodeTag, kodeText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// IsValidDay reports whether hari is one of Days (case-insensitive).
func IsValidDay(hari string) bool {
	hari = CleanUpper(hari)
	for _, d := range Days {
		if d == hari {
			return true
		}
	}
	return false
}

// IsValidProdi reports whether prodi, without its -PJJ suffix, is a known study program.
func IsValidProdi(prodi string) bool {
	base := strings.TrimSuffix(CleanUpper(prodi), "-PJJ")
	for _, p := range ProgramStudi {
		if p == base {
			return true
		}
	}
	return false
}

// IsValidCode reports whether kode is a well-formed asprak code.
func IsValidCode(kode string) bool {
	return kodeRegex.MatchString(kode)
}

// Custom Global Validators

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

func termValidation(fl validator.FieldLevel) bool {
	return termRegex.MatchString(fl.Field().String())
}

func hariValidation(fl validator.FieldLevel) bool {
	return IsValidDay(fl.Field().String())
}

func prodiValidation(fl validator.FieldLevel) bool {
	return IsValidProdi(fl.Field().String())
}

func kodeValidation(fl validator.FieldLevel) bool {
	return IsValidCode(fl.Field().String())
}
