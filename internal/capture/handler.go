package capture

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// toHTTPError maps service errors onto fiber errors. Anything outside the
// taxonomy is returned untouched and becomes a 500 in the app error handler.
func toHTTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrTransactionFailure):
		return fiber.NewError(fiber.StatusConflict, "the store rejected the change, please retry")
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidSymbology),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInsufficientInput),
		errors.Is(err, ErrNoData):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}

// parseBody decodes the JSON body into dst and runs its validate tags.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid field "+verrs[0].Field()+": "+verrs[0].Tag())
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "id must be a positive integer")
	}
	return uint(id), nil
}
