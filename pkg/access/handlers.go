package access

import (
	"github.com/Abraxas-365/fateweaver/pkg/errx"
	"github.com/gofiber/fiber/v2"
)

// AccessHandlers maneja las rutas HTTP de acceso a la mesa
type AccessHandlers struct {
	tokens     *TokenService
	middleware *Middleware
}

// NewAccessHandlers crea una nueva instancia de los handlers de acceso
func NewAccessHandlers(tokens *TokenService, middleware *Middleware) *AccessHandlers {
	return &AccessHandlers{
		tokens:     tokens,
		middleware: middleware,
	}
}

// RegisterRoutes registra las rutas de acceso en la aplicación Fiber
func (h *AccessHandlers) RegisterRoutes(app fiber.Router) {
	api := app.Group("/api/v1")
	api.Post("/table/token", h.middleware.RequireGameMaster(), h.mintTableToken)
}

type mintTokenRequest struct {
	Role string `json:"role"`
}

func (h *AccessHandlers) mintTableToken(c *fiber.Ctx) error {
	var req mintTokenRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errx.Wrap(err, "Invalid request body", errx.TypeValidation)
		}
	}

	role := Role(req.Role)
	if role != RoleGameMaster {
		role = RolePlayer
	}

	token, err := h.tokens.MintTableToken(role)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(token)
}
