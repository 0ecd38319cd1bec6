package handlers

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/noatrans/noatrans-api/services"
	"github.com/noatrans/noatrans-api/utils/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
	}{
		{fmt.Errorf("%w: title is required", services.ErrValidation), fiber.StatusBadRequest},
		{fmt.Errorf("%w: course is already deleted", services.ErrInvalidState), fiber.StatusBadRequest},
		{fmt.Errorf("%w: you do not own this course", services.ErrForbidden), fiber.StatusForbidden},
		{fmt.Errorf("%w: course not found", services.ErrNotFound), fiber.StatusNotFound},
		{fmt.Errorf("%w: already enrolled", services.ErrConflict), fiber.StatusConflict},
		{fmt.Errorf("connection reset"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		app := fiber.New()
		err := tc.err
		app.Get("/boom", func(c *fiber.Ctx) error {
			return DomainError(c, err)
		})

		resp, reqErr := app.Test(httptest.NewRequest("GET", "/boom", nil))
		require.NoError(t, reqErr)
		assert.Equal(t, tc.wantStatus, resp.StatusCode, "error: %v", tc.err)

		var body response.Response
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.False(t, body.Success)
		assert.NotEmpty(t, body.Error)
	}
}
