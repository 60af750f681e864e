package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"dooh/internal/models"
)

// ValidationErrors wraps the validator's ValidationErrors
type ValidationErrors []playgroundvalidator.FieldError

// CustomValidator wraps go-playground/validator
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() echo.Validator {
	v := playgroundvalidator.New()

	// Report fields by their json names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "" {
			name = fld.Tag.Get("param")
		}
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	err := v.RegisterValidation("user_role", validateUserRole)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("signup_role", validateSignupRole)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("campaign_status", validateCampaignStatus)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("booking_status", validateBookingStatus)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("booking_decision", validateBookingDecision)
	if err != nil {
		return nil
	}

	return &CustomValidator{validator: v}
}

// Custom validation functions
func validateUserRole(fl playgroundvalidator.FieldLevel) bool {
	return models.IsValidUserRole(models.UserRole(fl.Field().String()))
}

// Admin is provisioned from the environment, never through signup.
func validateSignupRole(fl playgroundvalidator.FieldLevel) bool {
	role := models.UserRole(fl.Field().String())
	return role == models.UserRoleAdvertiser || role == models.UserRoleScreenOwner
}

func validateCampaignStatus(fl playgroundvalidator.FieldLevel) bool {
	return models.IsValidCampaignStatus(models.CampaignStatus(fl.Field().String()))
}

func validateBookingStatus(fl playgroundvalidator.FieldLevel) bool {
	return models.IsValidBookingStatus(models.BookingStatus(fl.Field().String()))
}

func validateBookingDecision(fl playgroundvalidator.FieldLevel) bool {
	status := models.BookingStatus(fl.Field().String())
	return status == models.BookingStatusApproved || status == models.BookingStatusRejected
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var fields []string
	for _, err := range ve {
		fields = append(fields, err.Field())
	}
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
}

// Fields formats each failure as a readable message keyed by field name.
func (ve ValidationErrors) Fields() map[string]string {
	errMap := make(map[string]string)
	for _, err := range ve {
		field := err.Field()
		tag := err.Tag()
		param := err.Param()

		switch tag {
		case "required":
			errMap[field] = fmt.Sprintf("%s is required", field)
		case "email":
			errMap[field] = fmt.Sprintf("%s must be a valid email", field)
		case "min":
			errMap[field] = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			errMap[field] = fmt.Sprintf("%s must be at most %s", field, param)
		case "url":
			errMap[field] = fmt.Sprintf("%s must be a valid URL", field)
		case "uuid":
			errMap[field] = fmt.Sprintf("%s must be a valid UUID", field)
		case "oneof":
			errMap[field] = fmt.Sprintf("%s must be one of [%s]", field, param)
		case "gt":
			errMap[field] = fmt.Sprintf("%s must be greater than %s", field, param)
		case "gte":
			errMap[field] = fmt.Sprintf("%s must be at least %s", field, param)
		case "gtfield":
			errMap[field] = fmt.Sprintf("%s must be after %s", field, param)
		case "gtefield":
			errMap[field] = fmt.Sprintf("%s must not be before %s", field, param)
		case "user_role":
			errMap[field] = fmt.Sprintf("%s must be one of: advertiser, screen_owner, admin", field)
		case "signup_role":
			errMap[field] = fmt.Sprintf("%s must be either 'advertiser' or 'screen_owner'", field)
		case "campaign_status":
			errMap[field] = fmt.Sprintf("%s must be one of: draft, active, paused, completed", field)
		case "booking_status":
			errMap[field] = fmt.Sprintf("%s must be one of: pending, approved, rejected", field)
		case "booking_decision":
			errMap[field] = fmt.Sprintf("%s must be either 'approved' or 'rejected'", field)
		default:
			errMap[field] = fmt.Sprintf("%s failed validation: %s", field, tag)
		}
	}
	return errMap
}
