package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OwnerTokenTTL bounds how long a creator can check on their page.
const OwnerTokenTTL = 30 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// JWT issues and checks owner tokens. The subject is the page id.
type JWT struct {
	secret []byte
	now    func() time.Time
}

func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), now: time.Now}
}

func (j *JWT) Sign(pageID string) (string, error) {
	now := j.now()
	claims := jwt.MapClaims{
		"sub": pageID,
		"iat": now.Unix(),
		"exp": now.Add(OwnerTokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(j.secret)
}

func (j *JWT) Verify(tokenStr string) (string, error) {
	t, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}

	sub, err := t.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("missing sub")
	}
	return sub, nil
}
