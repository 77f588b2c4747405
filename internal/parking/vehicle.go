package parking

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// PlateLength is the exact number of characters in a license plate.
const PlateLength = 7

// PlateTag is the struct tag that checks a field holds a well-formed plate.
const PlateTag = "plate"

type Vehicle struct {
	Plate string
}

func NewVehicle(plate string) *Vehicle {
	return &Vehicle{
		Plate: plate,
	}
}

// RegisterPlateValidation installs the PlateTag check on v.
func RegisterPlateValidation(v *validator.Validate) error {
	return v.RegisterValidation(PlateTag, validatePlate)
}

func validatePlate(fl validator.FieldLevel) bool {
	plate := fl.Field().String()
	if utf8.RuneCountInString(plate) != PlateLength {
		return false
	}
	for _, r := range plate {
		if !unicode.IsDigit(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

type PlateValidator struct {
	validate *validator.Validate
}

func NewPlateValidator() (*PlateValidator, error) {
	v := validator.New()
	if err := RegisterPlateValidation(v); err != nil {
		return nil, fmt.Errorf("register %q validation: %w", PlateTag, err)
	}

	return &PlateValidator{
		validate: v,
	}, nil
}

// Validate returns ErrInvalidPlate when plate is not exactly seven
// uppercase letters or digits.
func (pv *PlateValidator) Validate(plate string) error {
	if err := pv.validate.Var(plate, "required,"+PlateTag); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return fmt.Errorf("%w: %q", ErrInvalidPlate, plate)
		}
		return err
	}
	return nil
}

func (pv *PlateValidator) IsValid(plate string) bool {
	return pv.Validate(plate) == nil
}
