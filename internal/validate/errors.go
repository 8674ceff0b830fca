package validate

import (
	"errors"
	"fmt"
)

// ErrAuthenticationRequired gates every data operation that runs without a
// live authenticated session.
var ErrAuthenticationRequired = errors.New("Authentication required. Please login first.")

// EmptyFieldError reports a required field that was empty after trimming.
type EmptyFieldError struct {
	Field string
}

func (e EmptyFieldError) Error() string {
	return fmt.Sprintf("%s cannot be empty", e.Field)
}

// TooLongError reports a field exceeding its maximum length.
type TooLongError struct {
	Field string
	Max   int
}

func (e TooLongError) Error() string {
	return fmt.Sprintf("%s cannot exceed %d characters", e.Field, e.Max)
}

// InvalidRangeError reports a numeric field outside its closed range.
type InvalidRangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e InvalidRangeError) Error() string {
	return fmt.Sprintf("%s value %d is invalid. Must be between %d and %d", e.Field, e.Value, e.Min, e.Max)
}

// InvalidCharactersError reports a field containing characters outside the
// allowed set.
type InvalidCharactersError struct {
	Field string
}

func (e InvalidCharactersError) Error() string {
	return fmt.Sprintf("%s contains invalid characters. Only letters, numbers, spaces, and basic punctuation are allowed", e.Field)
}

// TooManyItemsError reports a list exceeding its maximum size.
type TooManyItemsError struct {
	Field string
	Max   int
}

func (e TooManyItemsError) Error() string {
	return fmt.Sprintf("%s cannot exceed %d items", e.Field, e.Max)
}

// InvalidMediaTypeError reports a media type tag that is neither "movie"
// nor "tv".
type InvalidMediaTypeError struct {
	Value string
}

func (e InvalidMediaTypeError) Error() string {
	return fmt.Sprintf("Invalid media type: %s. Must be 'movie' or 'tv'", e.Value)
}

// DuplicateEntryError reports an insert that would collide with an existing
// item carrying the same normalized name and media type.
type DuplicateEntryError struct {
	MediaType string
	Name      string
}

func (e DuplicateEntryError) Error() string {
	return fmt.Sprintf("A %s with the name '%s' already exists in your watch list", e.MediaType, e.Name)
}
