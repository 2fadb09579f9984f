package imagepkg

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a merge is asked for with no images.
	ErrEmptyInput = errors.New("no images to merge")
	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid layout config")
)

// InvalidDimensionError reports an image or canvas that is empty or larger
// than the size limits allow.
type InvalidDimensionError struct {
	What   string // "image", "canvas", "crop", ...
	Index  int    // image index, -1 when not applicable
	Width  int
	Height int
}

func (e *InvalidDimensionError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid %s %d dimensions %dx%d", e.What, e.Index, e.Width, e.Height)
	}
	return fmt.Sprintf("invalid %s dimensions %dx%d", e.What, e.Width, e.Height)
}

// DecodeError is a failure to decode one input image.
type DecodeError struct {
	Index int
	Name  string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError is a failure to serialize a surface.
type EncodeError struct {
	Format Format
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
