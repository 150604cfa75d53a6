package capture

import (
	"capture-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the capture API on api. Ingestion and reads are
// open; edits and destructive routes go through the admin middleware.
func RegisterRoutes(api fiber.Router, svc *Service, adminSecret string) {
	api.Post("/sessions", IngestHandler(svc))
	api.Get("/sessions", ListSessionsHandler(svc))
	api.Get("/sessions/:id", GetSessionHandler(svc))
	api.Post("/export", ExportHandler(svc))
	api.Get("/symbologies", ListSymbologiesHandler(svc))

	admin := auth.AdminMiddleware(adminSecret)
	api.Put("/entries/:id/status", admin, UpdateStatusHandler(svc))
	api.Put("/entries/:id", admin, UpdateEntryHandler(svc))
	api.Post("/sessions/merge", admin, MergeHandler(svc))
	api.Post("/sessions/bulk-delete", admin, BulkDeleteHandler(svc))
	api.Delete("/sessions", admin, ResetHandler(svc))
}
