package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/PYROP3/pets-io/internal/account/dto"
	"github.com/PYROP3/pets-io/internal/account/service"
	"github.com/PYROP3/pets-io/internal/errcatalog"
	autherror "github.com/PYROP3/pets-io/internal/errors"
	"github.com/PYROP3/pets-io/internal/mailer"
	"github.com/gofiber/fiber/v2"
)

const mailTimeout = 30 * time.Second

// AccountHandler is the HTTP face of the authentication engine. Every outcome
// is a catalog entry resolved against the client's Locale header, except a
// successful /auth which returns the account profile plus the session token.
type AccountHandler struct {
	authService *service.AuthService
	catalog     *errcatalog.Catalog
	mail        mailer.Mailer
}

func NewAccountHandler(authService *service.AuthService, catalog *errcatalog.Catalog, mail mailer.Mailer) *AccountHandler {
	return &AccountHandler{
		authService: authService,
		catalog:     catalog,
		mail:        mail,
	}
}

func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return h.sendCatalog(c, "UnknownError")
	}

	pending, err := h.authService.Register(c.UserContext(), input)
	if err != nil {
		return h.sendError(c, err)
	}

	// Delivery is fire and forget: the registration outcome does not depend
	// on the mail provider.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := h.mail.SendVerification(ctx, pending.Identity, pending.Name, pending.VerificationToken); err != nil {
			slog.Error("failed to send verification mail",
				slog.String("identity", pending.Identity), slog.Any("error", err))
		}
	}()

	return h.sendCatalog(c, "Success")
}

func (h *AccountHandler) VerifyAccount(c *fiber.Ctx) error {
	if _, err := h.authService.VerifyAccount(c.UserContext(), c.Query("token")); err != nil {
		return h.sendError(c, err)
	}

	return h.sendCatalog(c, "Success")
}

func (h *AccountHandler) Auth(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return h.sendCatalog(c, "UnknownError")
	}

	account, session, err := h.authService.Authenticate(c.UserContext(), input)
	if err != nil {
		return h.sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.AccountOutput{
		Email:     account.Identity,
		Name:      account.Name,
		Pets:      account.PetCount,
		Devices:   account.DeviceCount,
		AuthToken: session.Token,
	})
}

func (h *AccountHandler) Deauth(c *fiber.Ctx) error {
	if err := h.authService.Deauthenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization)); err != nil {
		return h.sendError(c, err)
	}

	return h.sendCatalog(c, "Success")
}

func (h *AccountHandler) RecoverPasswordNonce(c *fiber.Ctx) error {
	var input dto.RecoveryNonceInput
	if err := c.BodyParser(&input); err != nil {
		return h.sendCatalog(c, "UnknownError")
	}

	nonce, account, err := h.authService.RequestPasswordRecovery(c.UserContext(), input.Email)
	if err != nil {
		return h.sendError(c, err)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := h.mail.SendRecovery(ctx, account.Identity, account.Name, nonce.Nonce); err != nil {
			slog.Error("failed to send recovery mail",
				slog.String("identity", account.Identity), slog.Any("error", err))
		}
	}()

	return h.sendCatalog(c, "Success")
}

func (h *AccountHandler) RecoverPassword(c *fiber.Ctx) error {
	var input dto.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return h.sendCatalog(c, "UnknownError")
	}

	if err := h.authService.ResetPassword(c.UserContext(), input.Token, input.Password); err != nil {
		return h.sendError(c, err)
	}

	return h.sendCatalog(c, "Success")
}

func (h *AccountHandler) NotImplemented(c *fiber.Ctx) error {
	return h.sendCatalog(c, "NotImplemented")
}

func (h *AccountHandler) sendError(c *fiber.Ctx, err error) error {
	name := autherror.CatalogName(err)
	if name == "UnknownError" {
		slog.Error("request failed", slog.String("path", c.Path()), slog.Any("error", err))
	}

	return h.sendCatalog(c, name)
}

func (h *AccountHandler) sendCatalog(c *fiber.Ctx, name string) error {
	resolved := h.catalog.Resolve(name, c.Get("Locale"))

	return c.Status(resolved.HTTPStatus).JSON(fiber.Map{
		"Error":       resolved.PrettyName,
		"Description": resolved.Description,
		"Code":        resolved.Code,
	})
}
