package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/vladislavdragonenkov/booklibrary/internal/domain"
)

var isbnDigits = regexp.MustCompile(`^\d{13}$`)

// newValidator собирает валидатор входных DTO.
// Даты domain.Date проверяются как time.Time, нулевая дата считается отсутствующей.
func newValidator(now func() time.Time) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		d, ok := field.Interface().(domain.Date)
		if !ok || d.IsZero() {
			return nil
		}
		return d.Time()
	}, domain.Date{})

	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "isbndigits", func(fl validator.FieldLevel) bool {
		return isbnDigits.MatchString(fl.Field().String())
	})
	mustRegister(v, "notfuture", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !domain.DateOf(t).After(domain.DateOf(now()))
	})
	mustRegister(v, "todayorlater", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !domain.DateOf(t).Before(domain.DateOf(now()))
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// describeValidationError превращает ошибки валидатора в короткий текст для клиента.
func describeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Sprintf("%s: %s", fe.Field(), ruleText(fe)))
	}
	sort.Strings(problems)
	return "Invalid request: " + strings.Join(problems, "; ")
}

func ruleText(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must be present"
	case "notblank":
		return "must not be blank"
	case "isbndigits":
		return "must consist of exactly 13 digits"
	case "min":
		return "must be greater than or equal to " + fe.Param()
	case "notfuture":
		return "must not be in the future"
	case "todayorlater":
		return "must be today or later"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
