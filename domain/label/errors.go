package label

import (
	"errors"
	"fmt"
)

// Pipeline failures. Every one of them is terminal for the run that hit it.
var (
	// ErrInvalidInput covers empty text, non-positive split counts and
	// out-of-range layout parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means no QR payload could be decoded from an image.
	ErrNotFound = errors.New("qr code not found")
)

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
