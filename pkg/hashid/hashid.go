/*
Package hashid turns integer order IDs into public tokens of the form
"{id}-{hash8}", where hash8 is the first 8 hex characters of
HMAC-SHA256(secret, decimal id).

The numeric part stays readable for support staff; the hash part stops
anyone from enumerating orders by guessing neighbouring IDs. Tokens are
deterministic, so the same ID always produces the same token.
*/
package hashid

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
)

// DefaultSecret matches tokens already handed out to customers.
const DefaultSecret = "mysecret"

const digestLen = 8

type Codec struct {
	secret []byte
}

// NewCodec returns a codec keyed by secret. An empty secret falls back to
// DefaultSecret.
func NewCodec(secret string) *Codec {
	if secret == "" {
		secret = DefaultSecret
	}
	return &Codec{secret: []byte(secret)}
}

// UsesDefaultSecret reports whether the codec runs on the well-known secret.
func (c *Codec) UsesDefaultSecret() bool {
	return string(c.secret) == DefaultSecret
}

func (c *Codec) Encode(id int64) string {
	idPart := strconv.FormatInt(id, 10)
	return idPart + "-" + c.digest(idPart)
}

// Decode returns the ID of a well-formed token signed with this codec's
// secret. Any malformed or forged token yields false.
func (c *Codec) Decode(token string) (int64, bool) {
	idPart, hashPart, ok := strings.Cut(token, "-")
	if !ok || idPart == "" || len(hashPart) != digestLen {
		return 0, false
	}
	for i := 0; i < len(idPart); i++ {
		if idPart[i] < '0' || idPart[i] > '9' {
			return 0, false
		}
	}

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	want := c.digest(idPart)
	if subtle.ConstantTimeCompare([]byte(want), []byte(hashPart)) != 1 {
		return 0, false
	}
	return id, true
}

func (c *Codec) digest(idPart string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(idPart))
	return hex.EncodeToString(mac.Sum(nil))[:digestLen]
}
