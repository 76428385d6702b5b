package credstore

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func entry(user, salt, password string) string {
	digest := Digest(salt, password)
	if user == "" {
		return fmt.Sprintf("%v:%v", salt, hex.EncodeToString(digest[:]))
	}
	return fmt.Sprintf("%v:%v:%v", user, salt, hex.EncodeToString(digest[:]))
}

func TestMultiUser(t *testing.T) {
	spec := entry("alice", "salt-a", "wonderland") + ";" + entry("bob", "salt-b", "builder")
	store, err := Parse(spec)
	require.NoError(t, err)
	require.True(t, store.RequiresUsername())

	require.True(t, store.Verify("alice", "wonderland"))
	require.True(t, store.Verify("bob", "builder"))

	// right password, wrong account
	require.False(t, store.Verify("alice", "builder"))
	require.False(t, store.Verify("bob", "wonderland"))

	// unknown or absent username always fails
	require.False(t, store.Verify("mallory", "wonderland"))
	require.False(t, store.Verify("", "wonderland"))
}

func TestPasswordMutations(t *testing.T) {
	const password = "correct horse"
	store, err := Parse(entry("alice", "salt-a", password))
	require.NoError(t, err)
	require.True(t, store.Verify("alice", password))
	for i := range password {
		mutated := []byte(password)
		mutated[i] ^= 0x01
		require.False(t, store.Verify("alice", string(mutated)),
			"mutation at position %v should not verify", i)
	}
	require.False(t, store.Verify("alice", password[:len(password)-1]))
	require.False(t, store.Verify("alice", password+"x"))
}

func TestSingleUser(t *testing.T) {
	store, err := Parse(entry("", "pepper", "hunter2"))
	require.NoError(t, err)
	require.False(t, store.RequiresUsername())

	require.True(t, store.Verify("", "hunter2"))
	require.False(t, store.Verify("", "hunter3"))
	// a submission naming any user is rejected outright
	require.False(t, store.Verify("admin", "hunter2"))
}

func TestParseRejectsMalformedSpecs(t *testing.T) {
	valid := entry("alice", "salt-a", "pw")
	for name, spec := range map[string]string{
		"empty":                 "",
		"blank":                 "   ",
		"short salt":            entry("alice", "abcd", "pw"),
		"digest not hex":        "alice:salt-a:zzzz",
		"digest too short":      "alice:salt-a:abcdef",
		"empty username":        ":" + entry("x", "salt-a", "pw")[2:],
		"too many fields":       "alice:salt-a:deadbeef:extra",
		"single field":          "alice",
		"duplicate user":        valid + ";" + valid,
		"single mixed in multi": valid + ";" + entry("", "pepper", "pw"),
		"trailing separator":    valid + ";",
	} {
		_, err := Parse(spec)
		require.Error(t, err, "spec %v (%q) should not parse", name, spec)
	}
}

func TestParseErrorTypes(t *testing.T) {
	_, err := Parse(entry("alice", "ab", "pw"))
	require.IsType(t, SaltTooShort{}, err)

	_, err = Parse("alice:salt-a:nothex")
	require.IsType(t, InvalidDigest{}, err)

	valid := entry("alice", "salt-a", "pw")
	_, err = Parse(valid + ";" + valid)
	require.IsType(t, DuplicateUser{}, err)

	_, err = Parse("alice")
	require.IsType(t, MalformedEntry{}, err)
}

func TestDigestIsSaltColonPassword(t *testing.T) {
	// fixed vector: sha256("salt:password")
	digest := Digest("salt", "password")
	require.Equal(t,
		"291e247d155354e48fec2b579637782446821935fc96a5a08a0b7885179c408b",
		hex.EncodeToString(digest[:]))
}

func TestUppercaseDigestsParse(t *testing.T) {
	digest := Digest("pepper", "hunter2")
	spec := fmt.Sprintf("alice:pepper:%X", digest[:])
	store, err := Parse(spec)
	require.NoError(t, err)
	require.True(t, store.Verify("alice", "hunter2"))
}
