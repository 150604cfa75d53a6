package capture

import (
	"bytes"
	"errors"

	"capture-backend/internal/export"

	"github.com/gofiber/fiber/v2"
)

type ExportRequest struct {
	SessionIDs []uint `json:"session_ids" validate:"required,min=1"`
	Format     string `json:"format" validate:"required"`
}

// POST /api/export
func ExportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ExportRequest
		if err := parseBody(c, &body); err != nil {
			return err
		}

		format, err := export.ParseFormat(body.Format)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, export.ErrUnknownFormat.Error())
		}

		rows, err := svc.ExportRows(c.UserContext(), body.SessionIDs)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "No data found for selected sessions")
			}
			return toHTTPError(err)
		}

		now := svc.Now()
		name := export.Filename(format, now)

		var buf bytes.Buffer
		if err := export.Write(&buf, format, name, now, rows); err != nil {
			return err
		}

		c.Set(fiber.HeaderContentType, format.ContentType())
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		c.Set(fiber.HeaderCacheControl, "no-cache, must-revalidate")
		return c.Send(buf.Bytes())
	}
}
