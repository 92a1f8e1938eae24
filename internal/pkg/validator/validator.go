package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/donamatch/donamatch/internal/core/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = validate.RegisterValidation("donation_type", func(fl validator.FieldLevel) bool {
		switch domain.DonationType(fl.Field().String()) {
		case domain.DonationClothing, domain.DonationFood, domain.DonationBooks, domain.DonationToys,
			domain.DonationElectronics, domain.DonationFurniture, domain.DonationOther:
			return true
		}
		return false
	})
	_ = validate.RegisterValidation("donation_status", func(fl validator.FieldLevel) bool {
		return domain.DonationStatus(fl.Field().String()).Valid()
	})
}

// Validate checks s against its `validate` tags. Field errors are flattened
// into one message naming the JSON fields.
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "donation_type":
		return fmt.Sprintf("%s must be one of clothing, food, books, toys, electronics, furniture, other", fe.Field())
	case "donation_status":
		return fmt.Sprintf("%s must be one of pending, assigned, completed, cancelled", fe.Field())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
