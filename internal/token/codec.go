// Package token turns a verified identity into a tamper-evident
// bearer token and back. Tokens are stateless: the proxy keeps no
// session table, so the only way to revoke outstanding sessions is to
// restart with a fresh secret (which invalidates every token at once).
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/calheira/wikigate/internal/secret"
	"golang.org/x/crypto/hkdf"
)

const (
	// allowance for clock skew between the issuing and the verifying
	// process when a max age is enforced
	clockSkew = time.Minute
)

var (
	macInfo = []byte("wikigate session token v1")
)

type (
	Codec struct {
		macKey []byte
		maxAge time.Duration
		now    func() time.Time
	}

	claims struct {
		User     string `json:"user"`
		IssuedAt int64  `json:"iat"`
	}
)

// New derives the token MAC key from the shared secret. A zero maxAge
// means tokens never expire and only secret rotation revokes them.
func New(key *secret.Key, maxAge time.Duration) *Codec {
	macKey := make([]byte, sha256.Size)
	kdf := hkdf.New(sha256.New, key[:], nil, macInfo)
	if _, err := io.ReadFull(kdf, macKey); err != nil {
		// hkdf only fails once the output space is exhausted,
		// impossible for a single 32 byte read
		panic(fmt.Sprintf("token: hkdf failure: %v", err))
	}
	return &Codec{macKey: macKey, maxAge: maxAge, now: time.Now}
}

// Issue serializes the identity plus the issuance time and appends an
// HMAC over the payload. The result is safe for cookie transport.
func (c *Codec) Issue(identity string) (string, error) {
	payload, err := json.Marshal(claims{User: identity, IssuedAt: c.now().Unix()})
	if err != nil {
		return "", fmt.Errorf("token: unable to serialize claims, cause %w", err)
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(payload) + "." + enc.EncodeToString(c.mac(payload)), nil
}

// Verify recomputes the MAC over the claimed payload and compares in
// constant time. Any malformed encoding, MAC mismatch or undecodable
// payload yields ok == false, never a partial identity.
func (c *Codec) Verify(tok string) (identity string, ok bool) {
	dot := strings.IndexByte(tok, '.')
	if dot < 0 {
		return "", false
	}
	enc := base64.RawURLEncoding
	payload, err := enc.DecodeString(tok[:dot])
	if err != nil {
		return "", false
	}
	mac, err := enc.DecodeString(tok[dot+1:])
	if err != nil {
		return "", false
	}
	if !hmac.Equal(mac, c.mac(payload)) {
		return "", false
	}
	var cl claims
	if err := json.Unmarshal(payload, &cl); err != nil {
		return "", false
	}
	if c.maxAge > 0 {
		issued := time.Unix(cl.IssuedAt, 0)
		now := c.now()
		if issued.After(now.Add(clockSkew)) || now.Sub(issued) > c.maxAge {
			return "", false
		}
	}
	return cl.User, true
}

func (c *Codec) mac(payload []byte) []byte {
	h := hmac.New(sha256.New, c.macKey)
	h.Write(payload)
	return h.Sum(nil)
}
