package middleware

import (
	"PlayFinder/models"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Session keys of users identified by name only
const (
	userkey = "user_id"
	namekey = "user_name"
)

const identityKey = "identity"

var (
	// ErrNoIdentity means the request carries no token at all
	ErrNoIdentity = errors.New("no identity")
	ErrNoSubject  = errors.New("token has no subject")
)

// Claims of the tokens handed out on login and sign-up
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for user, valid for ttl
func IssueToken(secret string, user models.UserRef, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates a token and returns who it was issued to
func ParseToken(secret, raw string) (models.UserRef, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.UserRef{}, err
	}
	if claims.Subject == "" {
		return models.UserRef{}, ErrNoSubject
	}
	return models.UserRef{ID: claims.Subject, Name: claims.Name}, nil
}

// JWT_decoder reads the bearer token of the request
func JWT_decoder(c *gin.Context, secret string) (models.UserRef, error) {
	header := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return models.UserRef{}, ErrNoIdentity
	}
	return ParseToken(secret, raw)
}

// SessionUser reads a name-only identity from the session cookie
func SessionUser(c *gin.Context) (models.UserRef, bool) {
	session := sessions.Default(c)
	id, _ := session.Get(userkey).(string)
	if id == "" {
		return models.UserRef{}, false
	}
	name, _ := session.Get(namekey).(string)
	return models.UserRef{ID: id, Name: name}, true
}

// SaveSessionUser keeps user in the session cookie
func SaveSessionUser(c *gin.Context, user models.UserRef) error {
	session := sessions.Default(c)
	session.Set(userkey, user.ID)
	session.Set(namekey, user.Name)
	return session.Save()
}

// ClearSession forgets the session identity. It reports whether there was one.
func ClearSession(c *gin.Context) (bool, error) {
	session := sessions.Default(c)
	if session.Get(userkey) == nil {
		return false, nil
	}
	session.Delete(userkey)
	session.Delete(namekey)
	return true, session.Save()
}

// Identify resolves who is calling, a bearer token first and the session
// cookie otherwise, and keeps it in the context. Anonymous calls go through.
func Identify(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := JWT_decoder(c, secret); err == nil {
			c.Set(identityKey, user)
		} else if !errors.Is(err, ErrNoIdentity) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "message": err.Error()})
			return
		} else if user, ok := SessionUser(c); ok {
			c.Set(identityKey, user)
		}
		c.Next()
	}
}

// CurrentUser returns the identity Identify found, if any
func CurrentUser(c *gin.Context) (models.UserRef, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.UserRef{}, false
	}
	user, ok := v.(models.UserRef)
	return user, ok
}

// AuthRequired is a simple middleware to check there's an identity.
func AuthRequired(c *gin.Context) {
	if _, ok := CurrentUser(c); !ok {
		// Abort the request with the appropriate error code
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "identify yourself first"})
		return
	}
	// Continue down the chain to handler etc
	c.Next()
}
