package access

import (
	"errors"
	"strings"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
	"github.com/gofiber/fiber/v2"
)

// gmKeyHeader es el header donde viaja la llave del director de juego.
const gmKeyHeader = "X-GM-Key"

// Middleware protege las rutas de la mesa.
type Middleware struct {
	tokens    *TokenService
	gmKeyHash string
}

// NewMiddleware crea el middleware de acceso.
func NewMiddleware(tokens *TokenService, gmKeyHash string) *Middleware {
	return &Middleware{
		tokens:    tokens,
		gmKeyHash: gmKeyHash,
	}
}

// RequireTable valida el token compartido de la mesa y deja los claims en
// c.Locals("table_claims").
func (m *Middleware) RequireTable() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get("Authorization"))
		if token == "" {
			return writeError(c, ErrUnauthorized())
		}

		claims, err := m.tokens.ValidateTableToken(token)
		if err != nil {
			return writeError(c, err)
		}

		c.Locals("table_claims", claims)
		return c.Next()
	}
}

// RequireGameMaster exige la llave del director de juego en X-GM-Key.
func (m *Middleware) RequireGameMaster() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := VerifyGameMasterKey(m.gmKeyHash, c.Get(gmKeyHeader)); err != nil {
			return writeError(c, err)
		}

		return c.Next()
	}
}

// Open devuelve un middleware que deja pasar todo, para mesas locales
// sin autenticación.
func Open() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Next()
	}
}

// bearerToken extrae el token de un header "Authorization: Bearer <token>".
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
		return parts[1]
	}
	return ""
}

// writeError corta la cadena y responde con la forma HTTP estándar de errx.
func writeError(c *fiber.Ctx, err error) error {
	var e *errx.Error
	if !errors.As(err, &e) {
		e = errx.Wrap(err, "authentication failed", errx.TypeAuthorization)
	}

	resp := e.ToHTTPResponse()
	resp.RequestID = c.Get("X-Request-ID")
	return c.Status(resp.StatusCode).JSON(resp)
}
