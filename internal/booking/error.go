package booking

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNextID            = errors.New("get next id from generator")
	ErrRecordNotFound    = errors.New("record not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrPersist           = errors.New("booking could not be saved")
	ErrIDConflict        = errors.New("booking id belongs to another booking")
)

type AvailabilityError struct {
	errors []string
}

func NewAvailabilityError() *AvailabilityError {
	//nolint:exhaustruct
	return &AvailabilityError{}
}

func IsAvailabilityError(err error) *AvailabilityError {
	if err == nil {
		return nil
	}

	var availabilityError *AvailabilityError

	if errors.As(err, &availabilityError) {
		return availabilityError
	}

	return nil
}

func (e *AvailabilityError) AddUnavailableRoom(roomID string, conflictID string, r DateRange) {
	e.errors = append(e.errors, fmt.Sprintf(
		"room '%v' is already booked from %v to %v by booking '%v'",
		roomID, r.CheckIn, r.CheckOut, conflictID,
	))
}

func (e *AvailabilityError) Error() string {
	return fmt.Sprintf("%+v", e.errors)
}

func (e *AvailabilityError) Fields() []string {
	return e.errors
}

func (e *AvailabilityError) UnavailableRoomsCount() int {
	return len(e.errors)
}

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

// Err returns nil for an empty map and an *InputError otherwise.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}

	return &InputError{fields: fe}
}

type InputError struct {
	fields FieldErrors
}

func NewInputError() *InputError {
	return &InputError{
		fields: make(FieldErrors),
	}
}

func IsInputError(err error) *InputError {
	if err == nil {
		return nil
	}

	var inputError *InputError

	if errors.As(err, &inputError) {
		return inputError
	}

	return nil
}

func (ie *InputError) FieldsCount() int {
	return len(ie.fields)
}

func (ie *InputError) AddError(field, msg string) {
	ie.fields[field] = msg
}

func (ie *InputError) Error() string {
	keys := make([]string, 0, len(ie.fields))
	for k := range ie.fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	msg := "invalid input:"
	for _, k := range keys {
		msg += fmt.Sprintf(" %s: %s;", k, ie.fields[k])
	}

	return msg
}

func (ie *InputError) Fields() FieldErrors {
	out := make(FieldErrors, len(ie.fields))
	for k, v := range ie.fields {
		out[k] = v
	}

	return out
}
