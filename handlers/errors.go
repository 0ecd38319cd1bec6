package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/noatrans/noatrans-api/services"
	"github.com/noatrans/noatrans-api/utils/response"
)

// DomainError maps a service error onto the JSON envelope. Unexpected
// errors are logged and surfaced as a generic 500 without leaking store
// internals.
func DomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		return response.Conflict(c, err.Error())
	}

	log.Printf("unexpected error on %s %s: %v", c.Method(), c.Path(), err)
	return response.InternalServerError(c, "")
}
