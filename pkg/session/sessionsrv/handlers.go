package sessionsrv

import (
	"github.com/Abraxas-365/fateweaver/pkg/errx"
	"github.com/Abraxas-365/fateweaver/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// SessionHandlers exposes the session over HTTP. Errors bubble up to the
// app-level error handler, which maps errx codes to status codes.
type SessionHandlers struct {
	service *TurnService
}

func NewSessionHandlers(service *TurnService) *SessionHandlers {
	return &SessionHandlers{service: service}
}

// RegisterRoutes mounts the session API under /api/v1. Player routes sit
// behind table auth, administrative routes behind the game master key.
func (h *SessionHandlers) RegisterRoutes(app fiber.Router, table, gm fiber.Handler) {
	api := app.Group("/api/v1")

	api.Post("/turn", table, h.processTurn)
	api.Get("/state", gm, h.getState)
	api.Get("/state/summary", table, h.getStateSummary)
	api.Get("/usage", table, h.getUsage)
	api.Get("/turns", gm, h.listTurns)

	api.Post("/snapshots", gm, h.createSnapshot)
	api.Get("/snapshots", gm, h.listSnapshots)
	api.Post("/snapshots/:id/restore", gm, h.restoreSnapshot)
}

type turnRequest struct {
	Input string `json:"input"`
}

type snapshotRequest struct {
	Label string `json:"label"`
}

// processTurn handles POST /api/v1/turn.
func (h *SessionHandlers) processTurn(c *fiber.Ctx) error {
	var req turnRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "Invalid request body", errx.TypeValidation)
	}

	result, err := h.service.ProcessTurn(c.Context(), req.Input)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// getState handles GET /api/v1/state.
func (h *SessionHandlers) getState(c *fiber.Ctx) error {
	state, err := h.service.CurrentState(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(state)
}

// getStateSummary handles GET /api/v1/state/summary.
func (h *SessionHandlers) getStateSummary(c *fiber.Ctx) error {
	summary, err := h.service.StateSummary(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(summary)
}

// getUsage handles GET /api/v1/usage.
func (h *SessionHandlers) getUsage(c *fiber.Ctx) error {
	return c.JSON(h.service.Usage(c.Context()))
}

// listTurns handles GET /api/v1/turns?page=&page_size=.
func (h *SessionHandlers) listTurns(c *fiber.Ctx) error {
	opts := kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}

	page, err := h.service.ListTurns(c.Context(), opts)
	if err != nil {
		return err
	}

	return c.JSON(page)
}

// createSnapshot handles POST /api/v1/snapshots.
func (h *SessionHandlers) createSnapshot(c *fiber.Ctx) error {
	var req snapshotRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errx.Wrap(err, "Invalid request body", errx.TypeValidation)
		}
	}

	snap, err := h.service.CreateSnapshot(c.Context(), req.Label)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(snap)
}

// listSnapshots handles GET /api/v1/snapshots.
func (h *SessionHandlers) listSnapshots(c *fiber.Ctx) error {
	snaps, err := h.service.ListSnapshots(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(snaps)
}

// restoreSnapshot handles POST /api/v1/snapshots/:id/restore.
func (h *SessionHandlers) restoreSnapshot(c *fiber.Ctx) error {
	id := kernel.SnapshotID(c.Params("id"))
	if id.IsEmpty() {
		return errx.New("Snapshot id is required", errx.TypeValidation)
	}

	summary, err := h.service.RestoreSnapshot(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"restored_from": id.String(),
		"summary":       summary,
	})
}
