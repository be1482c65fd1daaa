package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/haulwatch/pkg/eta"
	"github.com/travigo/haulwatch/pkg/geo"
	"github.com/travigo/haulwatch/pkg/session"
)

type positionResponse struct {
	Progress float64      `json:"progress" groups:"basic"`
	Position geo.Position `json:"position" groups:"basic"`
}

type etaResponse struct {
	Estimate eta.Estimate `json:"estimate" groups:"basic"`
	Route    eta.Snapshot `json:"route" groups:"basic"`
}

type progressRequest struct {
	Progress *float64 `json:"progress"`
}

type sessionRoutes struct {
	session *session.Session
}

func SessionRouter(router fiber.Router, trackingSession *session.Session) {
	routes := &sessionRoutes{session: trackingSession}

	router.Get("/position", routes.getPosition)
	router.Get("/notifications", routes.getNotifications)
	router.Get("/stations", routes.getStations)
	router.Get("/eta", routes.getETA)

	router.Post("/progress", routes.postProgress)
	router.Post("/refresh", routes.postRefresh)
}

func (s *sessionRoutes) getPosition(c *fiber.Ctx) error {
	return sendReduced(c, positionResponse{
		Progress: s.session.Progress(),
		Position: s.session.Position(),
	})
}

func (s *sessionRoutes) getNotifications(c *fiber.Ctx) error {
	return sendReduced(c, s.session.Notifications())
}

func (s *sessionRoutes) getStations(c *fiber.Ctx) error {
	return sendReduced(c, s.session.Stations())
}

func (s *sessionRoutes) getETA(c *fiber.Ctx) error {
	return sendReduced(c, etaResponse{
		Estimate: s.session.ETA(),
		Route:    s.session.ETASnapshot(),
	})
}

func (s *sessionRoutes) postProgress(c *fiber.Ctx) error {
	var request progressRequest
	if err := c.BodyParser(&request); err != nil {
		return sendError(c, fiber.StatusBadRequest, err)
	}
	if request.Progress == nil {
		return sendError(c, fiber.StatusBadRequest, errors.New("progress is required"))
	}

	return sendReduced(c, s.session.Tick(*request.Progress))
}

func (s *sessionRoutes) postRefresh(c *fiber.Ctx) error {
	err := s.session.Refresh(c.UserContext())

	switch {
	case errors.Is(err, eta.ErrInFlight):
		return sendError(c, fiber.StatusConflict, err)
	case err != nil:
		return sendError(c, fiber.StatusBadGateway, err)
	}

	return s.getETA(c)
}
