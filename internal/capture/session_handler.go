package capture

import (
	"capture-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

type BarcodeRequest struct {
	Value     string `json:"value"`
	Symbology *int   `json:"symbology"`
	Quantity  *int   `json:"quantity"`
	Timestamp string `json:"timestamp"`
}

type IngestRequest struct {
	SessionTimestamp string           `json:"session_timestamp"`
	DeviceInfo       string           `json:"device_info" validate:"max=255"`
	DeviceIP         string           `json:"device_ip" validate:"max=64"`
	Barcodes         []BarcodeRequest `json:"barcodes" validate:"required"`
}

// ToInput converts the wire payload. Devices publishing over MQTT use the
// same payload.
func (r IngestRequest) ToInput() IngestInput {
	in := IngestInput{
		SessionTimestamp: r.SessionTimestamp,
		DeviceLabel:      r.DeviceInfo,
		DeviceAddress:    r.DeviceIP,
	}
	if r.Barcodes != nil {
		in.Entries = make([]EntryInput, len(r.Barcodes))
		for i, b := range r.Barcodes {
			in.Entries[i] = EntryInput{
				Value:         b.Value,
				SymbologyCode: b.Symbology,
				Quantity:      b.Quantity,
				Timestamp:     b.Timestamp,
			}
		}
	}
	return in
}

type SessionIDsRequest struct {
	SessionIDs []uint `json:"session_ids" validate:"required,min=1"`
}

type MergeRequestBody struct {
	SessionIDs []uint `json:"session_ids" validate:"required"`
}

// POST /api/sessions
func IngestHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body IngestRequest
		if err := parseBody(c, &body); err != nil {
			return err
		}

		res, err := svc.Ingest(c.UserContext(), body.ToInput())
		if err != nil {
			return toHTTPError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":        true,
			"session_id":     res.SessionID,
			"total_barcodes": res.TotalEntryCount,
			"skipped":        res.Skipped,
		})
	}
}

// GET /api/sessions?limit=50
func ListSessionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessions, err := svc.ListSessions(c.UserContext(), c.QueryInt("limit", 0))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{
			"sessions": sessions,
			"total":    len(sessions),
		})
	}
}

// GET /api/sessions/:id
func GetSessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		detail, err := svc.GetSession(c.UserContext(), id)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(detail)
	}
}

// POST /api/sessions/merge
func MergeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body MergeRequestBody
		if err := parseBody(c, &body); err != nil {
			return err
		}

		res, err := svc.Merge(c.UserContext(), MergeRequest{
			SessionIDs: body.SessionIDs,
			Now:        svc.Now(),
			Label:      MergedDeviceLabel,
			Address:    c.IP(),
			Actor:      auth.Actor(c),
		})
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(res)
	}
}

// POST /api/sessions/bulk-delete
func BulkDeleteHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SessionIDsRequest
		if err := parseBody(c, &body); err != nil {
			return err
		}

		res, err := svc.BulkDelete(c.UserContext(), body.SessionIDs, auth.Actor(c))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(res)
	}
}

// DELETE /api/sessions
func ResetHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.ResetAll(c.UserContext(), auth.Actor(c))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(res)
	}
}

// GET /api/symbologies
func ListSymbologiesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Catalog().Entries())
	}
}
