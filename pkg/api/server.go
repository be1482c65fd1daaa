package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/haulwatch/pkg/api/routes"
	"github.com/travigo/haulwatch/pkg/optimize"
	"github.com/travigo/haulwatch/pkg/session"
)

func NewApp(trackingSession *session.Session, optimizer *optimize.Client) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	webApp.Get("version", routes.APIVersion)

	routes.SessionRouter(webApp.Group("/session"), trackingSession)
	routes.OptimizeRouter(webApp.Group("/optimize"), optimizer)

	return webApp
}

func SetupServer(listen string, trackingSession *session.Session, optimizer *optimize.Client) error {
	return NewApp(trackingSession, optimizer).Listen(listen)
}
