package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidSessionToken is returned when a session cookie fails
// signature or expiry checks. Callers treat the request as anonymous.
var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionToken is the signed value stored in the session cookie. The
// Token field contains the serialized JWT; Exp records when it stops
// being accepted. The expiry is fixed at session creation time and is
// never extended, so a session lives exactly its configured TTL.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewSessionToken builds and signs an HS256 JWT binding a session id to
// a user id. The sid claim names the server-side session record in
// Redis; sub carries the user id (empty for anonymous sessions created
// to hold return-to state before login).
func NewSessionToken(secret, sessionID, userID string, ttl time.Duration) (SessionToken, error) {
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	if userID != "" {
		claims["sub"] = userID
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies the cookie value and returns the session
// id and user id it names. Expired or tampered tokens yield
// ErrInvalidSessionToken; the caller then treats the request as
// anonymous rather than failing it.
func ParseSessionToken(secret, raw string) (sessionID, userID string, err error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSessionToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", "", ErrInvalidSessionToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidSessionToken
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", "", ErrInvalidSessionToken
	}
	uid, _ := claims["sub"].(string)
	return sid, uid, nil
}
