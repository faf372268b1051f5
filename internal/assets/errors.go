package assets

import (
	"errors"
	"fmt"
)

// Sentinel errors for HTTP-level download failures.
var (
	// ErrAuthentication indicates the credentials were rejected.
	ErrAuthentication = errors.New("assets: credentials rejected")

	// ErrNotFound indicates the asset does not exist or was removed.
	ErrNotFound = errors.New("assets: asset not found")

	// ErrPermissionDenied indicates platform-level access control refused
	// the request, including rate-limit-adjacent 403 responses.
	ErrPermissionDenied = errors.New("assets: access denied")
)

// NetworkErrorKind distinguishes network failure sub-cases.
type NetworkErrorKind int

const (
	NetworkGeneric NetworkErrorKind = iota
	NetworkTimeout
	NetworkConnectionRefused
)

// NetworkError represents a transport failure while fetching an asset.
type NetworkError struct {
	Kind NetworkErrorKind
	URL  string
	Err  error
}

func (e *NetworkError) Error() string {
	switch e.Kind {
	case NetworkTimeout:
		return fmt.Sprintf("assets: request timed out fetching %s: %v", e.URL, e.Err)
	case NetworkConnectionRefused:
		return fmt.Sprintf("assets: connection refused fetching %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("assets: network failure fetching %s: %v", e.URL, e.Err)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StorageErrorKind distinguishes local I/O failure sub-cases.
type StorageErrorKind int

const (
	StorageGeneric StorageErrorKind = iota
	StoragePermissionDenied
	StorageExhausted
)

// StorageError represents a local filesystem failure while persisting an
// asset.
type StorageError struct {
	Kind StorageErrorKind
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	switch e.Kind {
	case StoragePermissionDenied:
		return fmt.Sprintf("assets: permission denied writing %s: %v", e.Path, e.Err)
	case StorageExhausted:
		return fmt.Sprintf("assets: no space left writing %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("assets: I/O failure writing %s: %v", e.Path, e.Err)
	}
}

func (e *StorageError) Unwrap() error { return e.Err }

// HTTPError represents an unclassified non-2xx response.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("assets: HTTP error %d fetching %s", e.StatusCode, e.URL)
}

// IsNotFound checks if the error indicates a missing asset.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized checks if the error indicates rejected credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsForbidden checks if the error indicates a permission failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}
