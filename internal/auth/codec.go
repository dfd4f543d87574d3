package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Credential is the decoded session token. Role is always present; Handle,
// Signature and IssuedAt are set only when the session belongs to a named
// account. Secret echoes the shared access secret in shared-secret mode and
// takes the signature's place as the verified field there.
type Credential struct {
	Role      string `json:"role"`
	Handle    string `json:"handle,omitempty"`
	Secret    string `json:"secret,omitempty"`
	Signature string `json:"signature,omitempty"`
	IssuedAt  int64  `json:"timestamp,omitempty"`
}

// Codec issues and parses session credentials. The token is the base64url
// encoding of the credential JSON; named sessions carry an HMAC-SHA256
// signature over the handle, keyed with the server signing key. The signing
// key never leaves the server; the only secret a token may carry is the
// shared access secret.
type Codec struct {
	signingKey   []byte
	accessSecret string
}

func NewCodec(signingKey []byte, accessSecret string) *Codec {
	return &Codec{signingKey: signingKey, accessSecret: accessSecret}
}

func (c *Codec) sign(handle string) string {
	mac := hmac.New(sha256.New, c.signingKey)
	mac.Write([]byte(handle))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Codec) Issue(handle, role string, includeSecret bool) (string, error) {
	cred := Credential{Role: role}

	if handle != "" {
		cred.Handle = handle
		cred.Signature = c.sign(handle)
		cred.IssuedAt = time.Now().Unix()
	}
	if includeSecret {
		cred.Secret = c.accessSecret
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return "", fmt.Errorf("marshal credential: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Parse decodes and verifies a token. Verification is recomputed on every
// parse; validity is purely cryptographic, there is no server-side session
// state to consult. Named credentials must carry a valid handle signature;
// handle-less credentials must echo the shared access secret.
func (c *Codec) Parse(token string) (Credential, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	if cred.Role == "" {
		return Credential{}, ErrMalformedCredential
	}

	if cred.Handle == "" {
		if c.accessSecret == "" || !hmac.Equal([]byte(cred.Secret), []byte(c.accessSecret)) {
			return Credential{}, ErrBadSignature
		}
		return cred, nil
	}

	expected := c.sign(cred.Handle)
	if !hmac.Equal([]byte(cred.Signature), []byte(expected)) {
		return Credential{}, ErrBadSignature
	}

	return cred, nil
}
