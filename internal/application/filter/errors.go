package filter

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownDimension = errors.New("unknown filter dimension")
	ErrUnknownValue     = errors.New("unknown filter value")
)

func unknownDimension(d Dimension) error {
	return fmt.Errorf("%w: %q", ErrUnknownDimension, d)
}

func unknownValue(d Dimension, value string) error {
	return fmt.Errorf("%w: %q for %q", ErrUnknownValue, value, d)
}
