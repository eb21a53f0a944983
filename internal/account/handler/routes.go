package handler

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *AccountHandler) {
	app.Post("/createAccount", h.CreateAccount)
	app.Get("/verifyAccount", h.VerifyAccount)
	app.Post("/auth", h.Auth)
	app.Get("/deauth", h.Deauth)
	app.Post("/recoverPasswordNonce", h.RecoverPasswordNonce)
	app.Post("/recoverPassword", h.RecoverPassword)
	app.Get("/recoverPassword", h.NotImplemented)
}
