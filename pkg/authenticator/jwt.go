package authenticator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type claims[T any] struct {
	jwt.RegisteredClaims
	Object T `json:"obj,omitempty"`
}

type TokenEngine struct {
	secret []byte
}

func NewTokenEngine(secret string) *TokenEngine {
	return &TokenEngine{secret: []byte(secret)}
}

// Generate signs obj into a token which expires after the given duration.
func (e *TokenEngine) Generate(expiration time.Duration, obj any) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims[any]{
		Object: obj,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	})

	return token.SignedString(e.secret)
}

// Verify checks the signature and expiration of token, then decodes its
// object into obj.
func (e *TokenEngine) Verify(token string, obj any) error {
	var c claims[json.RawMessage]
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return e.secret, nil
	})
	if err != nil {
		return err
	}

	return json.Unmarshal(c.Object, obj)
}
