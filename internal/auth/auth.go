package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is what a bearer token carries. SessionToken ties the token to a
// session record; legacy tokens leave it empty.
type Claims struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	SessionToken string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and decodes bearer tokens.
type TokenCodec interface {
	Issue(claims Claims, expiresAt time.Time) (string, error)
	Decode(token string) (*Claims, error)
}

type JWTCodec struct {
	secret []byte
	now    func() time.Time
}

type CodecOption func(*JWTCodec)

func WithCodecClock(now func() time.Time) CodecOption {
	return func(j *JWTCodec) { j.now = now }
}

func NewJWTCodec(secret string, opts ...CodecOption) *JWTCodec {
	j := &JWTCodec{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *JWTCodec) Issue(claims Claims, expiresAt time.Time) (string, error) {
	now := j.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(j.secret)
}

func (j *JWTCodec) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DecodeLegacy reads the unsigned base64 "email:<anything>:userId" tokens
// issued before signed tokens existed. Anyone can forge one; accept them only
// while migrating.
func DecodeLegacy(token string) (*Claims, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		if raw, err = base64.RawURLEncoding.DecodeString(token); err != nil {
			return nil, ErrInvalidToken
		}
	}
	parts := strings.Split(string(raw), ":")
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return nil, ErrInvalidToken
	}
	return &Claims{Email: parts[0], UserID: parts[2]}, nil
}

// EncodeLegacy is the inverse of DecodeLegacy.
func EncodeLegacy(email, userID string, issuedAt time.Time) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%d:%s", email, issuedAt.UnixMilli(), userID)))
}
