package tournament

import (
	"errors"
	"strings"
	"unicode"
)

const (
	maxNameLength = 64
	maxIDLength   = 64
)

var (
	ErrEmptyName   = errors.New("tournament name is empty")
	ErrNameTooLong = errors.New("tournament name too long")
	ErrEmptyID     = errors.New("identifier is empty")
	ErrInvalidID   = errors.New("identifier contains whitespace")
	ErrIDTooLong   = errors.New("identifier too long")
)

// ValidateName checks a user-supplied tournament name before it goes on the
// wire.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// ValidateID checks an authority-issued identifier (tournament, match or
// battle royale id) before it is echoed back.
func ValidateID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if len(id) > maxIDLength {
		return ErrIDTooLong
	}
	for _, r := range id {
		if unicode.IsSpace(r) {
			return ErrInvalidID
		}
	}
	return nil
}
