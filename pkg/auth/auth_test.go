package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/intelcomp/taskwatch/pkg/auth"
	"github.com/intelcomp/taskwatch/pkg/utils/try"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func TestAuthority(t *testing.T) {
	t.Run("issued token is verified with its user", func(t *testing.T) {
		testee := auth.New(secret, "taskwatch", time.Hour)
		token := try.To(testee.Issue("alice")).OrFatal(t)

		user := try.To(testee.Verify(token)).OrFatal(t)
		if user != "alice" {
			t.Errorf("unexpected user: %s", user)
		}
	})

	for name, token := range map[string]func(t *testing.T) string{
		"signed with other key": func(t *testing.T) string {
			return try.To(auth.New([]byte("another secret, another secret!!"), "taskwatch", time.Hour).Issue("alice")).OrFatal(t)
		},
		"issued by other issuer": func(t *testing.T) string {
			return try.To(auth.New(secret, "someone", time.Hour).Issue("alice")).OrFatal(t)
		},
		"expired": func(t *testing.T) string {
			return try.To(auth.New(secret, "taskwatch", -time.Minute).Issue("alice")).OrFatal(t)
		},
		"without subject": func(t *testing.T) string {
			return try.To(auth.New(secret, "taskwatch", time.Hour).Issue("")).OrFatal(t)
		},
		"signed with none": func(t *testing.T) string {
			claims := jwt.RegisteredClaims{
				Issuer: "taskwatch", Subject: "alice",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			}
			return try.To(jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)).OrFatal(t)
		},
		"malformed": func(*testing.T) string {
			return "not.a.token"
		},
	} {
		t.Run("token "+name+" is rejected", func(t *testing.T) {
			testee := auth.New(secret, "taskwatch", time.Hour)
			if _, err := testee.Verify(token(t)); !errors.Is(err, auth.ErrInvalidToken) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	testee := auth.New(secret, "taskwatch", time.Hour)

	serve := func(header string) (*httptest.ResponseRecorder, string) {
		e := echo.New()
		var seen string
		e.GET("/api/tasks/running", func(c echo.Context) error {
			seen, _ = auth.User(c)
			return c.NoContent(http.StatusOK)
		}, testee.Middleware())

		req := httptest.NewRequest(http.MethodGet, "/api/tasks/running", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		resp := httptest.NewRecorder()
		e.ServeHTTP(resp, req)
		return resp, seen
	}

	t.Run("it passes the user of valid token", func(t *testing.T) {
		token := try.To(testee.Issue("bob")).OrFatal(t)
		resp, user := serve("Bearer " + token)
		if resp.Code != http.StatusOK {
			t.Errorf("unexpected status: %d", resp.Code)
		}
		if user != "bob" {
			t.Errorf("unexpected user: %s", user)
		}
	})

	for name, header := range map[string]string{
		"no header":      "",
		"basic auth":     "Basic Ym9iOnBhc3N3b3Jk",
		"empty bearer":   "Bearer ",
		"invalid bearer": "Bearer not.a.token",
	} {
		t.Run("it rejects request with "+name, func(t *testing.T) {
			resp, user := serve(header)
			if resp.Code != http.StatusUnauthorized {
				t.Errorf("unexpected status: %d", resp.Code)
			}
			if user != "" {
				t.Errorf("handler is called with user %s", user)
			}
		})
	}
}
