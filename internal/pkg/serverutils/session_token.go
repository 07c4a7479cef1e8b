package serverutils

import (
	"os"
	"time"

	"ai-mediation-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// The session token carries the resolved (session, role) pair from
// create/join to every later call, so the PIN is checked once and the
// role never travels as a raw parameter.

func secret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func IssueSessionToken(sessionID uuid.UUID, role entity.Role, name string) (string, error) {
	claims := jwt.MapClaims{
		"session_id": sessionID.String(),
		"role":       string(role),
		"name":       name,
		"iat":        time.Now().Unix(),
		"exp":        time.Now().Add(30 * 24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

func parseSessionToken(tokenStr string) (uuid.UUID, entity.Role, string, bool) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return secret(), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, "", "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", "", false
	}

	rawID, _ := claims["session_id"].(string)
	sessionID, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, "", "", false
	}

	rawRole, _ := claims["role"].(string)
	role, valid := entity.ParseRole(rawRole)
	if !valid {
		return uuid.Nil, "", "", false
	}

	name, _ := claims["name"].(string)
	return sessionID, role, name, true
}

// SessionTokenMiddleware guards the chat/handoff/report surface. It
// accepts the token from the Authorization header, or from the "token"
// query param for websocket upgrades.
func SessionTokenMiddleware(ctx *fiber.Ctx) error {
	tokenStr := ""
	authHeader := ctx.Get("Authorization")
	if len(authHeader) >= 7 && authHeader[:7] == "Bearer " {
		tokenStr = authHeader[7:]
	} else {
		tokenStr = ctx.Query("token")
	}
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}

	sessionID, role, name, ok := parseSessionToken(tokenStr)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	ctx.Locals("session_id", sessionID)
	ctx.Locals("role", role)
	ctx.Locals("name", name)
	return ctx.Next()
}

// SessionID reads the authenticated session id set by the middleware.
func SessionID(ctx *fiber.Ctx) uuid.UUID {
	id, _ := ctx.Locals("session_id").(uuid.UUID)
	return id
}

// SessionRole reads the authenticated role set by the middleware.
func SessionRole(ctx *fiber.Ctx) entity.Role {
	role, _ := ctx.Locals("role").(entity.Role)
	return role
}

// SessionName reads the display name set by the middleware.
func SessionName(ctx *fiber.Ctx) string {
	name, _ := ctx.Locals("name").(string)
	return name
}
