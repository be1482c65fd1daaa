package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/haulwatch/pkg/optimize"
)

type optimizeRequest struct {
	Waypoints []optimize.Waypoint `json:"waypoints"`
	Profile   optimize.Profile    `json:"profile"`
}

type optimizeResponse struct {
	Result  *optimize.Result `json:"result" groups:"basic"`
	Savings string           `json:"savings" groups:"basic"`
}

func OptimizeRouter(router fiber.Router, client *optimize.Client) {
	router.Post("/", func(c *fiber.Ctx) error {
		var request optimizeRequest
		if err := c.BodyParser(&request); err != nil {
			return sendError(c, fiber.StatusBadRequest, err)
		}

		result, err := client.Optimize(c.UserContext(), request.Waypoints, request.Profile)

		var validationError *optimize.ValidationError
		var serviceError *optimize.ServiceError
		switch {
		case errors.As(err, &validationError):
			return sendError(c, fiber.StatusBadRequest, err)
		case errors.Is(err, optimize.ErrSuperseded):
			return sendError(c, fiber.StatusConflict, err)
		case errors.As(err, &serviceError):
			return sendError(c, fiber.StatusBadGateway, err)
		case err != nil:
			return sendError(c, fiber.StatusInternalServerError, err)
		}

		return sendReduced(c, optimizeResponse{
			Result:  result,
			Savings: optimize.Describe(result),
		})
	})
}
