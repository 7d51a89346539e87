package utils // package utils provides helpers for token creation, verification and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for refresh tokens at rest
	"encoding/hex"  // hex encoding for random values and digests
	"errors"        // sentinel error definitions and matching
	"time"          // expiration arithmetic

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Verification failure kinds.  Callers branch on these because the
// client remediation differs: an expired token means the user must
// log in (or refresh) again, an invalid token means the credential
// itself is broken and resending it will never help.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived, carried in the Authorization header
// and never persisted server-side; signature and expiry are the only
// things verification trusts.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long-lived signed token used to obtain new
// access tokens.  The token string travels exclusively in an httpOnly
// cookie.  In the database only a SHA-256 hash of the string is stored;
// the row's existence is what makes the token acceptable.
type RefreshToken struct {
	Token string    // the serialized JWT string set as the cookie value
	Exp   time.Time // UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The JWT
// embeds the user ID (sub), the role, an expiration (exp) and issued
// at (iat).  ttlMin is minutes-scale on purpose: a short window keeps
// the exposure of a leaked access token small.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 JWT carrying the user ID, a
// days-scale expiry and a random jti.  It is signed with its own secret
// so an access token can never be replayed as a refresh token.  The jti
// makes every issuance distinct even within the same second, so each
// session gets its own token-store row and revoking one session never
// touches a sibling issued at the same time.  The caller is responsible
// for persisting HashRefreshRaw(token); issuing a refresh token always
// writes one token-store record.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (RefreshToken, error) {
	jti, err := randomHex(16)
	if err != nil {
		return RefreshToken{}, err
	}
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub": userID,
		"jti": jti,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Token: signed, Exp: exp}, nil
}

// VerifyAccessToken validates signature and expiry and returns the
// embedded user ID and role.  It fails with ErrTokenExpired when the
// signature is fine but the exp claim is in the past, and with
// ErrTokenInvalid for everything else (malformed token, signature
// mismatch, unexpected algorithm, missing claims).
func VerifyAccessToken(secret, token string) (uint64, string, error) {
	claims, err := parseHS256(secret, token)
	if err != nil {
		return 0, "", err
	}
	uid, ok := subjectID(claims)
	if !ok {
		return 0, "", ErrTokenInvalid
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return 0, "", ErrTokenInvalid
	}
	return uid, role, nil
}

// VerifyRefreshToken validates signature and expiry of a refresh token
// and returns the embedded user ID.  Signature validity alone is not
// sufficient to accept a refresh token: the caller must additionally
// check that the token still exists in the token store, because a
// logged-out token verifies perfectly well.
func VerifyRefreshToken(secret, token string) (uint64, error) {
	claims, err := parseHS256(secret, token)
	if err != nil {
		return 0, err
	}
	uid, ok := subjectID(claims)
	if !ok {
		return 0, ErrTokenInvalid
	}
	return uid, nil
}

// parseHS256 parses a token, pinning the signing method to HMAC, and
// maps every jwt library failure onto the two sentinel kinds.
func parseHS256(secret, token string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tok.Valid {
		return nil, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// subjectID extracts the numeric user ID from the sub claim.  JSON
// numbers decode as float64.
func subjectID(claims jwt.MapClaims) (uint64, bool) {
	f, ok := claims["sub"].(float64)
	if !ok || f < 0 {
		return 0, false
	}
	return uint64(f), true
}

// HashRefreshRaw returns the SHA-256 hash of the refresh token string
// as a hex string.  Storing only the hash in the database prevents
// attackers from using stolen database rows to refresh sessions; the
// store is still looked up by the value the client presents, so row
// existence keeps its meaning.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.  Used for slug and username
// suffixes.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
