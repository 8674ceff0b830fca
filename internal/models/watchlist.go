package models

import "watchlist-gateway/internal/validate"

// MediaType distinguishes movies from TV shows. It is stored as its
// lowercase textual tag.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// ParseMediaType converts a textual tag into a MediaType. Anything other
// than "movie" or "tv" is rejected; this is the write-path rule.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(s) {
	case MediaTypeMovie, MediaTypeTV:
		return MediaType(s), nil
	default:
		return "", validate.InvalidMediaTypeError{Value: s}
	}
}

// NormalizeMediaType maps a stored tag to a MediaType for the read path.
// Unrecognized tags fall back to movie; ok reports whether the tag was
// recognized so callers can log the fallback instead of hiding it.
func NormalizeMediaType(s string) (mt MediaType, ok bool) {
	switch MediaType(s) {
	case MediaTypeMovie, MediaTypeTV:
		return MediaType(s), true
	default:
		return MediaTypeMovie, false
	}
}

// Label returns the user-facing name of the media type.
func (m MediaType) Label() string {
	if m == MediaTypeTV {
		return "TV show"
	}
	return "movie"
}

// WatchListItem is the persisted entity: a movie or TV show with a rating
// and a rewatch flag. ID is nil until the store assigns one.
type WatchListItem struct {
	ID              *int      `json:"id"`
	MediaType       MediaType `json:"media_type"`
	Name            string    `json:"name"`
	Rating          int       `json:"rating"`
	WouldWatchAgain bool      `json:"would_watch_again"`
}

// Credentials carries the end-user database login for a single authenticate
// call. It is never persisted; only the username may appear in logs.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is the result shape for authenticate and logout.
type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Response is the uniform envelope returned by every data operation.
// Failures are reported through it rather than raised.
type Response struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	RowsAffected int64           `json:"rows_affected"`
	Data         []WatchListItem `json:"data,omitempty"`
}

// Fail builds a failure Response with the given user-facing message.
func Fail(message string) Response {
	return Response{Success: false, Message: message}
}
