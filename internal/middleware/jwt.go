package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/essay-auditor-api/internal/utils"
)

// Locals keys populated by the JWT middlewares.
const (
	LocalUserID         = "user_id"
	LocalTokenID        = "token_id"
	LocalTokenExpiresAt = "token_expires_at"
)

var errTokenRevoked = errors.New("token revoked")

// RevocationChecker reports whether a token identifier has been signed out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// JWTProtected returns a middleware that rejects requests without a valid
// bearer token. revocations may be nil.
func JWTProtected(secret string, revocations RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get(fiber.HeaderAuthorization)
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		if err := authenticate(c, secret, revocations, authorization); err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		return c.Next()
	}
}

// JWTOptional binds the user when a valid bearer token is present and lets
// every other request through anonymously. Handlers decide whether an
// anonymous caller is acceptable.
func JWTOptional(secret string, revocations RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if authorization := c.Get(fiber.HeaderAuthorization); authorization != "" {
			_ = authenticate(c, secret, revocations, authorization)
		}
		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, secret string, revocations RevocationChecker, authorization string) error {
	const bearer = "bearer "
	if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
		return errors.New("invalid authorization header")
	}

	tokenString := strings.TrimSpace(authorization[len(bearer):])
	if tokenString == "" {
		return errors.New("invalid token")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return errors.New("invalid token")
	}

	userID, err := normalizeUserID(claims.Subject)
	if err != nil || userID == 0 {
		return errors.New("invalid token claims")
	}

	if revocations != nil && claims.ID != "" {
		revoked, err := revocations.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			return fmt.Errorf("unable to verify token")
		}
		if revoked {
			return errTokenRevoked
		}
	}

	c.Locals(LocalUserID, userID)
	c.Locals(LocalTokenID, claims.ID)
	if claims.ExpiresAt != nil {
		c.Locals(LocalTokenExpiresAt, claims.ExpiresAt.Time)
	}

	return nil
}

func normalizeUserID(subject string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(subject), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

// TokenFromContext returns the identifier and expiry of the bearer token
// bound by the JWT middlewares.
func TokenFromContext(c *fiber.Ctx) (string, time.Time) {
	id, _ := c.Locals(LocalTokenID).(string)
	expiresAt, _ := c.Locals(LocalTokenExpiresAt).(time.Time)
	return id, expiresAt
}
