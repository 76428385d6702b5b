package credstore

import "fmt"

type (
	SaltTooShort struct {
		User string
	}

	InvalidDigest struct {
		User string
	}

	DuplicateUser struct {
		User string
	}

	MalformedEntry struct {
		Entry  string
		Reason string
	}
)

func (s SaltTooShort) Error() string {
	return fmt.Sprintf("salt for user %q must have at least %v characters", s.User, MinSaltLen)
}

func (i InvalidDigest) Error() string {
	return fmt.Sprintf("digest for user %q is not a valid sha-256 hex digest", i.User)
}

func (d DuplicateUser) Error() string {
	return fmt.Sprintf("user %q appears more than once", d.User)
}

func (m MalformedEntry) Error() string {
	return fmt.Sprintf("malformed credential entry %q: %v", m.Entry, m.Reason)
}
