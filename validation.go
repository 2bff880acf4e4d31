package extend

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// structValidator returns the shared validator. Field names in errors are
// the JSON names used on the wire.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})

	return validate
}

// validateStruct checks the struct tags of s and converts failures into
// ValidationErrors.
func validateStruct(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, &ValidationError{Field: fe.Field(), Message: describe(fe)})
	}

	return errors.Join(errs...)
}

// describe renders a validator failure as a short message.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// requireID rejects blank resource identifiers and dot segments, which
// would resolve to a different path.
func requireID(field, id string) error {
	switch strings.TrimSpace(id) {
	case "":
		return invalid(field, "is required")
	case ".", "..":
		return invalid(field, "%q is not a valid identifier", id)
	}

	return nil
}

// validateWindow checks a validFrom/validTo pair. validFrom may not lie
// before today when notPast is set, and validTo must fall on a later date
// than validFrom.
func validateWindow(from, to time.Time, now time.Time, notPast bool) error {
	if !from.IsZero() && notPast && dateOf(from).Before(dateOf(now)) {
		return invalid("validFrom", "cannot be in the past")
	}

	if !from.IsZero() && !to.IsZero() && !dateOf(to).After(dateOf(from)) {
		return invalid("validTo", "must be after validFrom")
	}

	return nil
}

// validateRecurrence applies the period and terminator rules that cannot be
// expressed as struct tags.
func validateRecurrence(r *Recurrence, now time.Time) error {
	if err := validateStruct(r); err != nil {
		return err
	}

	switch r.Terminator {
	case TerminatorCount, TerminatorCountOrDate:
		if r.Count == nil {
			return invalid("count", "is required for %s terminator", r.Terminator)
		}
		if *r.Count <= 0 {
			return invalid("count", "must be greater than 0")
		}
	}

	switch r.Terminator {
	case TerminatorDate, TerminatorCountOrDate:
		if r.Until.IsZero() {
			return invalid("until", "is required for %s terminator", r.Terminator)
		}
		if !dateOf(r.Until).After(dateOf(now)) {
			return invalid("until", "must be in the future")
		}
	}

	switch r.Period {
	case PeriodDaily:
		if nonZero(r.ByWeekDay) || nonZero(r.ByMonthDay) || nonZero(r.ByYearDay) {
			return invalid("period", "DAILY must not set byWeekDay, byMonthDay or byYearDay")
		}
	case PeriodWeekly:
		if r.ByWeekDay == nil {
			return invalid("byWeekDay", "is required for WEEKLY period")
		}
		if *r.ByWeekDay < 0 || *r.ByWeekDay > 6 {
			return invalid("byWeekDay", "must be between 0 and 6 (Monday to Sunday)")
		}
	case PeriodMonthly:
		if r.ByMonthDay == nil {
			return invalid("byMonthDay", "is required for MONTHLY period")
		}
		if *r.ByMonthDay < 1 || *r.ByMonthDay > 31 {
			return invalid("byMonthDay", "must be between 1 and 31")
		}
		if *r.ByMonthDay > 28 {
			return invalid("byMonthDay",
				"%d does not exist in all months, choose a day between 1 and 28", *r.ByMonthDay)
		}
	case PeriodYearly:
		if r.ByYearDay == nil {
			return invalid("byYearDay", "is required for YEARLY period")
		}
		if *r.ByYearDay < 1 || *r.ByYearDay > 365 {
			return invalid("byYearDay", "must be between 1 and 365")
		}
	}

	return nil
}

// nonZero reports whether a day selector is set to something other than 0.
// A zero selector is accepted on DAILY recurrences and dropped from the body.
func nonZero(p *int) bool {
	return p != nil && *p != 0
}
