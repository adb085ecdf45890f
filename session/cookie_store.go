package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/slimloans/hanami/errors"
)

// maxCookieSize is the smallest limit browsers are required to honor
const maxCookieSize = 4096

type cookieClaims struct {
	Data map[string]interface{} `json:"data"`
	jwt.StandardClaims
}

// CookieStore keeps the whole session client side in a signed token
type CookieStore struct {
	secret  []byte
	options Options
}

func NewCookieStore(secret string, options Options) *CookieStore {
	return &CookieStore{secret: []byte(secret), options: options}
}

func (cs *CookieStore) Options() Options { return cs.options }

// Load returns the session from the cookie, a tampered or expired cookie
// yields a fresh session
func (cs *CookieStore) Load(ctx context.Context, r *http.Request) (*Session, error) {
	c, err := r.Cookie(cs.options.Key)
	if err != nil || c.Value == "" {
		return New(""), nil
	}

	claims := cookieClaims{}

	token, err := jwt.ParseWithClaims(c.Value, &claims, cs.keyFunc)
	if err != nil || !token.Valid {
		return New(""), nil
	}

	return newLoaded("", claims.Data), nil
}

func (cs *CookieStore) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return cs.secret, nil
}

// Save writes the cookie when the session changed
func (cs *CookieStore) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	s.sweep()

	if !s.IsDirty() {
		return nil
	}

	if s.destroyed {
		http.SetCookie(w, cs.options.expired())
		return nil
	}

	claims := cookieClaims{
		Data: s.snapshot(),
		StandardClaims: jwt.StandardClaims{
			IssuedAt: time.Now().Unix(),
		},
	}

	if cs.options.Expiry > 0 {
		claims.ExpiresAt = time.Now().Add(cs.options.Expiry).Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cs.secret)
	if err != nil {
		return errors.Wrap(ErrorStore, err)
	}

	cookie := cs.options.cookie(signed)
	if len(cookie.String()) > maxCookieSize {
		return ErrorCookieOverflow.Errorf("session cookie is %d bytes, limit is %d", len(cookie.String()), maxCookieSize)
	}

	http.SetCookie(w, cookie)
	return nil
}

var _ Store = (*CookieStore)(nil)
