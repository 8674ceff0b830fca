// Package validate holds the field-level checks run before any value reaches
// storage. Every check is pure and total: no I/O, no shared state, and any
// input yields either nil or a typed error from the taxonomy in errors.go.
package validate

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxNameLength bounds item names after trimming.
	MaxNameLength = 200
	// MinRating and MaxRating bound the closed rating range.
	MinRating = 1
	MaxRating = 10
	// MaxBatchDeleteIDs bounds a single batch delete.
	MaxBatchDeleteIDs = 100
)

// namePattern is deliberately stricter than the sanitizer's allowed set: no
// double quote, no angle brackets, no slashes. Sanitization happens
// separately, so escaped entities must themselves pass this pattern.
var namePattern = regexp.MustCompile(`^[a-zA-Z0-9\s.,!?\-_()':;&]+$`)

// Name checks a watch list item name: non-empty after trimming, at most
// MaxNameLength characters, and drawn from the allowed character set.
func Name(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return EmptyFieldError{Field: "Name"}
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return TooLongError{Field: "Name", Max: MaxNameLength}
	}
	if !namePattern.MatchString(trimmed) {
		return InvalidCharactersError{Field: "Name"}
	}
	return nil
}

// Rating checks that a rating falls inside [MinRating, MaxRating].
func Rating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return InvalidRangeError{Field: "Rating", Value: rating, Min: MinRating, Max: MaxRating}
	}
	return nil
}

// IDsForDeletion checks a batch-delete id list: non-empty, at most
// MaxBatchDeleteIDs entries, every id positive.
func IDsForDeletion(ids []int) error {
	if len(ids) == 0 {
		return EmptyFieldError{Field: "ID list"}
	}
	if len(ids) > MaxBatchDeleteIDs {
		return TooManyItemsError{Field: "ID list", Max: MaxBatchDeleteIDs}
	}
	for _, id := range ids {
		if id <= 0 {
			return InvalidRangeError{Field: "ID", Value: id, Min: 1, Max: math.MaxInt32}
		}
	}
	return nil
}
