package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/azmiruddin-143/Local-Guide-Server/internal/availability/timeslot"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type AvailabilityValidator struct {
	validate    *validator.Validate
	logger      *logger.Logger
	horizonDays int
}

func NewAvailabilityValidator(log *logger.Logger, horizonDays int) *AvailabilityValidator {
	v := validator.New()

	if err := v.RegisterValidation("clock_12h", validateClock12h); err != nil {
		log.Fatal("Failed to register 'clock_12h' validator",
			"error", err,
		)
	}

	log.Info("Availability validator initialized successfully")

	return &AvailabilityValidator{
		validate:    v,
		logger:      log,
		horizonDays: horizonDays,
	}
}

func validateClock12h(fl validator.FieldLevel) bool {
	_, err := timeslot.Parse(fl.Field().String())
	return err == nil
}

func (v *AvailabilityValidator) Validate(av *model.Availability) error {
	if err := v.validate.Struct(av); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var errs ValidationErrors

	if _, err := timeslot.Duration(av.StartTime, av.EndTime); err != nil {
		errs = append(errs, ValidationError{
			Field:   "EndTime",
			Message: "end_time must be after start_time",
		})
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	date := av.SpecificDate.UTC().Truncate(24 * time.Hour)
	if date.Before(today) {
		errs = append(errs, ValidationError{
			Field:   "SpecificDate",
			Message: "date must not be in the past",
		})
	}
	if date.After(today.AddDate(0, 0, v.horizonDays)) {
		errs = append(errs, ValidationError{
			Field:   "SpecificDate",
			Message: fmt.Sprintf("date must be within the next %d days", v.horizonDays),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *AvailabilityValidator) ValidateUpdate(updates *model.AvailabilityUpdate) error {
	if err := v.validate.Struct(updates); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *AvailabilityValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors
	for _, err := range errs {
		out = append(out, ValidationError{
			Field:   err.Field(),
			Message: messageForTag(err),
		})
	}
	return out
}

func messageForTag(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "mongodb":
		return "must be a valid ID"
	case "clock_12h":
		return "must be a clock time like '9:00 AM'"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	default:
		return fmt.Sprintf("failed validation rule '%s'", err.Tag())
	}
}
