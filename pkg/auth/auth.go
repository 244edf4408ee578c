package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	apierr "github.com/intelcomp/taskwatch/pkg/api/types/errors"
)

var ErrInvalidToken = errors.New("invalid token")

const userKey = "taskwatch.user"

// Authority issues and verifies bearer tokens (HS256 JWT) of users.
type Authority struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// New creates Authority.
//
// # Args
//
// - secret: HMAC key to sign and verify tokens
//
// - issuer: "iss" claim of tokens
//
// - ttl: lifetime of issued tokens
func New(secret []byte, issuer string, ttl time.Duration) *Authority {
	return &Authority{secret: secret, issuer: issuer, ttl: ttl}
}

// Issue signs a token for the user.
func (a *Authority) Issue(user string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    a.issuer,
		Subject:   user,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify checks the token and returns the user of it.
//
// # Returns
//
// - string: user (the "sub" claim)
//
// - error: ErrInvalidToken joined with the cause, when the token is not acceptable.
func (a *Authority) Verify(token string) (string, error) {
	claims := new(jwt.RegisteredClaims)
	_, err := jwt.ParseWithClaims(
		token, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", errors.Join(ErrInvalidToken, errors.New("no subject"))
	}
	return claims.Subject, nil
}

// Middleware rejects requests without valid bearer token with 401,
// and puts the user of the token into the echo.Context.
func (a *Authority) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return apierr.Unauthorized("set bearer token in Authorization header", nil)
			}
			user, err := a.Verify(token)
			if err != nil {
				return apierr.Unauthorized("token is invalid or expired. get a new one.", err)
			}
			c.Set(userKey, user)
			return next(c)
		}
	}
}

// User returns the user authenticated by the Middleware.
func User(c echo.Context) (string, bool) {
	user, ok := c.Get(userKey).(string)
	return user, ok && user != ""
}

// WithUser sets the user into the echo.Context, as the Middleware does.
func WithUser(c echo.Context, user string) echo.Context {
	c.Set(userKey, user)
	return c
}
