package audit

import (
	"strconv"

	"capture-backend/internal/auth"
	"capture-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RegisterRoutes mounts the audit trail. Snapshots carry full row data, so
// reads need the admin token like the writes that produced them.
func RegisterRoutes(api fiber.Router, db *gorm.DB, adminSecret string) {
	api.Get("/audit-logs", auth.AdminMiddleware(adminSecret), ListAuditLogsHandler(db))
}

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	Actor       string             `json:"actor"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	BeforeData  string             `json:"before_data"`
	AfterData   string             `json:"after_data"`
}

// GET /api/audit-logs?entity_type=capture_session&entity_id=1&action=merge&limit=50
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := ListFilter{
			EntityType: c.Query("entity_type"),
			Action:     models.AuditAction(c.Query("action")),
			Limit:      c.QueryInt("limit", 100),
		}
		if idStr := c.Query("entity_id"); idStr != "" {
			id, err := strconv.ParseUint(idStr, 10, 64)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "entity_id must be a positive integer")
			}
			f.EntityID = uint(id)
		}

		logs, err := List(c.UserContext(), db, f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to retrieve audit logs")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
				Actor:       l.Actor,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
				BeforeData:  l.BeforeData,
				AfterData:   l.AfterData,
			})
		}

		return c.JSON(resp)
	}
}
