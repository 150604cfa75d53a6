package capture

import (
	"capture-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

type UpdateStatusRequest struct {
	Processed *bool  `json:"processed" validate:"required"`
	Notes     string `json:"notes"`
}

type UpdateEntryRequest struct {
	Value     string `json:"value" validate:"required"`
	Symbology *int   `json:"symbology" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required"`
}

// PUT /api/entries/:id/status
func UpdateStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var body UpdateStatusRequest
		if err := parseBody(c, &body); err != nil {
			return err
		}

		status, err := svc.UpdateStatus(c.UserContext(), id, *body.Processed, body.Notes)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(status)
	}
}

// PUT /api/entries/:id
func UpdateEntryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var body UpdateEntryRequest
		if err := parseBody(c, &body); err != nil {
			return err
		}

		fields, err := svc.UpdateEntry(c.UserContext(), id, EntryEdit{
			Value:         body.Value,
			SymbologyCode: *body.Symbology,
			Quantity:      *body.Quantity,
		}, auth.Actor(c))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{
			"success":        true,
			"updated_fields": fields,
		})
	}
}
