package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "resort-admin"

var (
	ErrBadPasscode = errors.New("invalid passcode")
	ErrBadToken    = errors.New("invalid or expired token")
	ErrNoSecret    = errors.New("jwt secret is empty")
)

type Conf struct {
	// PasscodeHash is a bcrypt hash. When empty, Passcode is hashed instead.
	PasscodeHash string
	Passcode     string
	Secret       string
	TTL          time.Duration
	Cost         int
	Now          func() time.Time
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator guards the admin panel with a single shared passcode.
type Authenticator struct {
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(conf Conf) (*Authenticator, error) {
	if conf.Secret == "" {
		return nil, ErrNoSecret
	}

	if conf.Now == nil {
		conf.Now = time.Now
	}

	if conf.TTL <= 0 {
		conf.TTL = 12 * time.Hour //nolint:gomnd
	}

	if conf.Cost == 0 {
		conf.Cost = bcrypt.DefaultCost
	}

	hash := []byte(conf.PasscodeHash)

	if len(hash) == 0 {
		generated, err := bcrypt.GenerateFromPassword([]byte(conf.Passcode), conf.Cost)
		if err != nil {
			return nil, fmt.Errorf("hash admin passcode: %w", err)
		}

		hash = generated
	}

	return &Authenticator{
		hash:   hash,
		secret: []byte(conf.Secret),
		ttl:    conf.TTL,
		now:    conf.Now,
	}, nil
}

// Login checks the passcode and issues a signed token.
func (a *Authenticator) Login(passcode string) (string, time.Time, error) {
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(passcode)); err != nil {
		return "", time.Time{}, ErrBadPasscode
	}

	now := a.now()
	expires := now.Add(a.ttl)

	claims := Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return token, expires, nil
}

// Verify accepts a raw token or an "Authorization: Bearer" value.
func (a *Authenticator) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return nil, ErrBadToken
	}

	claims := &Claims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadToken, err)
	}

	return claims, nil
}
