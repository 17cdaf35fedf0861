package token

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// credentialSeparator is "::" percent-encoded, as the dashboard cookie expects it.
const credentialSeparator = "%3A%3A"

// Credential is the session credential derived from a raw access token.
type Credential struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// String renders the cookie value: <UserID>%3A%3A<Token>.
func (c Credential) String() string {
	return c.UserID + credentialSeparator + c.Token
}

// DecodeError explains why a raw token could not be turned into a Credential.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decoding access token: %s: %v", e.Reason, e.Err)
	}
	return "decoding access token: " + e.Reason
}

func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrNotSignedIn, e.Err}
	}
	return []error{ErrNotSignedIn}
}

// claims is the token payload. Cursor puts "<provider>|<user id>" in sub; older
// payloads carried the same value under "subject".
type claims struct {
	jwt.RegisteredClaims
	LegacySubject string `json:"subject,omitempty"`
}

func (c claims) subject() string {
	if s := strings.TrimSpace(c.Subject); s != "" {
		return s
	}
	return strings.TrimSpace(c.LegacySubject)
}

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Derive decodes the payload of raw without verifying its signature and builds
// the session credential. Every failure is a *DecodeError matching ErrNotSignedIn.
func Derive(raw string) (Credential, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Credential{}, &DecodeError{Reason: fmt.Sprintf("expected 3 segments, got %d", len(parts))}
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return Credential{}, &DecodeError{Reason: "payload is not base64url", Err: err}
	}

	var c claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return Credential{}, &DecodeError{Reason: "payload is not a JSON object", Err: err}
	}

	sub := c.subject()
	if sub == "" {
		return Credential{}, &DecodeError{Reason: "payload has no subject"}
	}
	subParts := strings.Split(sub, "|")
	if len(subParts) < 2 || strings.TrimSpace(subParts[1]) == "" {
		return Credential{}, &DecodeError{Reason: "subject has no user id"}
	}

	cred := Credential{
		UserID: strings.TrimSpace(subParts[1]),
		Token:  raw,
	}
	if c.ExpiresAt != nil {
		cred.ExpiresAt = c.ExpiresAt.Time
	}
	return cred, nil
}
