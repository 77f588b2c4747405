package parking

import "errors"

var (
	ErrInvalidPlate     = errors.New("invalid license plate format")
	ErrAlreadyParked    = errors.New("car is already parked")
	ErrLotFull          = errors.New("parking lot is full")
	ErrNotFound         = errors.New("car not found")
	ErrUnknownAction    = errors.New("invalid command")
	ErrMalformedCommand = errors.New("malformed command")
)
