package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	config "github.com/townbeat/townbeat-go/config"
)

// Session is the authenticated caller, injected into the request context
// by the auth middleware. Handlers read it instead of global auth state.
type Session struct {
	UserID  string
	Email   string
	IsAdmin bool
}

const sessionKey = "session"

// AuthMiddleware requires a valid bearer access token.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessionFromRequest(c, cfg.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		apply(c, sess)
		c.Next()
	}
}

// OptionalAuth resolves a session when a token is present but lets
// anonymous requests through. Browsing is public; visibility rules key
// off the (possibly absent) session.
func OptionalAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		sess, err := sessionFromRequest(c, cfg.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		apply(c, sess)
		c.Next()
	}
}

// AdminOnly guards moderation routes. The admin flag comes from the
// verified token claim, never from the request body.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok || !sess.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func SessionFrom(c *gin.Context) (Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return Session{}, false
	}
	sess, ok := v.(Session)
	return sess, ok
}

func sessionFromRequest(c *gin.Context, secret string) (Session, error) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return Session{}, errors.New("missing bearer token")
	}

	token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Session{}, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, errors.New("invalid token claims")
	}
	if typ, _ := claims["typ"].(string); typ != "access" {
		return Session{}, errors.New("not an access token")
	}

	uid, _ := claims["user_id"].(string)
	if uid == "" {
		return Session{}, errors.New("invalid token claims")
	}
	email, _ := claims["email"].(string)
	isAdmin, _ := claims["is_admin"].(bool)

	return Session{UserID: uid, Email: email, IsAdmin: isAdmin}, nil
}

func apply(c *gin.Context, sess Session) {
	c.Set(sessionKey, sess)
	c.Set("user_id", sess.UserID)
	role := "user"
	if sess.IsAdmin {
		role = "admin"
	}
	c.Set("role", role)
}
