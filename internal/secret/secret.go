package secret

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	EnvVar = "WIKIGATE_SECRET"
)

type (
	// Key is the shared secret every session token is authenticated
	// with. Rotating it invalidates all outstanding tokens at once.
	Key [32]byte
)

func (k *Key) Zero() {
	for i := range k {
		k[i] = 0
	}
}

// Hex renders the key the way gensecret prints it and the way
// operators are expected to store it.
func (k *Key) Hex() string {
	return strings.ToUpper(hex.EncodeToString(k[:]))
}

func Generate(entropy io.Reader) (*Key, error) {
	var k Key
	_, err := io.ReadFull(entropy, k[:])
	if err != nil {
		return nil, fmt.Errorf("secret: unable to gather entropy, cause %w", err)
	}
	return &k, nil
}

// Parse accepts the hex form emitted by Hex, in either case.
func Parse(val string) (*Key, error) {
	buf, err := hex.DecodeString(strings.TrimSpace(val))
	if err != nil {
		return nil, fmt.Errorf("secret: cannot decode string to a valid key, cause %v", err)
	}
	var k Key
	if len(buf) != len(k) {
		return nil, fmt.Errorf("secret: decoded key has %v bytes, expecting %v", len(buf), len(k))
	}
	copy(k[:], buf)
	return &k, nil
}

// FromEnv reads the key from the given environment variable and blanks
// the variable, so the secret does not linger in the process
// environment for child processes to inherit.
func FromEnv(varname string, getfn func(string) string, setfn func(string, string) error) (*Key, error) {
	if getfn == nil {
		getfn = os.Getenv
	}
	if setfn == nil {
		setfn = os.Setenv
	}
	val := getfn(varname)
	setfn(varname, "")
	if val == "" {
		return nil, fmt.Errorf("secret: environment variable %v is empty", varname)
	}
	return Parse(val)
}
