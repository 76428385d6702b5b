// Package credstore holds the static table of users the proxy is
// willing to authenticate. The table is parsed once at startup and is
// read-only afterwards, so it can be shared by every request without
// synchronization.
//
// The specification string is a ;-separated list of
// user:salt:hex(digest) entries, where digest is
// sha256(salt || ":" || password). A deployment that protects a
// single anonymous account uses the two-field form salt:hex(digest)
// instead, and logins then must not carry a username at all.
package credstore

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
)

const (
	MinSaltLen = 5
)

type (
	Store struct {
		users  map[string]record
		single bool
	}

	record struct {
		salt     string
		verifier [sha256.Size]byte
	}
)

// Digest computes the password verifier stored in a credential entry.
func Digest(salt, password string) [sha256.Size]byte {
	h := sha256.New()
	h.Write([]byte(salt))
	h.Write([]byte(":"))
	h.Write([]byte(password))
	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

func Parse(spec string) (*Store, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, errors.New("credentials specification is empty")
	}
	s := &Store{users: make(map[string]record)}
	entries := strings.Split(spec, ";")
	for _, entry := range entries {
		fields := strings.Split(entry, ":")
		var user, salt, digest string
		switch len(fields) {
		case 2:
			if len(entries) > 1 {
				return nil, MalformedEntry{Entry: entry, Reason: "single-user entry cannot be combined with other entries"}
			}
			salt, digest = fields[0], fields[1]
			s.single = true
		case 3:
			user, salt, digest = fields[0], fields[1], fields[2]
			if user == "" {
				return nil, MalformedEntry{Entry: entry, Reason: "empty username"}
			}
		default:
			return nil, MalformedEntry{Entry: entry, Reason: "expecting user:salt:digest or salt:digest"}
		}
		rec, err := parseRecord(user, salt, digest)
		if err != nil {
			return nil, err
		}
		if _, dup := s.users[user]; dup {
			return nil, DuplicateUser{User: user}
		}
		s.users[user] = rec
	}
	return s, nil
}

func parseRecord(user, salt, digest string) (record, error) {
	if len(salt) < MinSaltLen {
		return record{}, SaltTooShort{User: user}
	}
	rec := record{salt: salt}
	buf, err := hex.DecodeString(digest)
	if err != nil || len(buf) != sha256.Size {
		return record{}, InvalidDigest{User: user}
	}
	copy(rec.verifier[:], buf)
	return rec, nil
}

// RequiresUsername reports whether logins must name the account, ie.
// whether the store was built in multi-user mode.
func (s *Store) RequiresUsername() bool {
	return !s.single
}

// Verify is a pure predicate: it never mutates the store and leaves no
// lockout or retry state behind. In single-user mode any submission
// that carries a username is rejected outright.
func (s *Store) Verify(username, password string) bool {
	if s.single && username != "" {
		return false
	}
	rec, known := s.users[username]
	if !known {
		// run the digest against a throwaway record anyway, so an
		// unknown username costs the same as a wrong password
		rec = record{salt: "?????"}
	}
	sum := Digest(rec.salt, password)
	match := subtle.ConstantTimeCompare(sum[:], rec.verifier[:]) == 1
	return match && known
}
