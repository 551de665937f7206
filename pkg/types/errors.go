// Package types holds the error taxonomy shared by the leaderboard engine
// and its stores. Operations fail with exactly one of these variants so that
// callers can branch on errors.Is rather than string matching.
package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks malformed points, dates or identifiers. Terminal.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks an external post id that could not be resolved.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyRewarded marks a duplicate (giver, post) submission. The
	// transaction log is unchanged when this is returned.
	ErrAlreadyRewarded = errors.New("already rewarded")

	// ErrUnavailable marks a transient backend failure. Scheduled tasks
	// retry it; ingest callers see it as-is.
	ErrUnavailable = errors.New("unavailable")
)

func InvalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
