package app

import (
	"errors"
	"strings"

	"github.com/amirasaad/smartbank/pkg/config"
	"github.com/amirasaad/smartbank/pkg/service/ledger"
	"github.com/amirasaad/smartbank/webapi/account"
	"github.com/amirasaad/smartbank/webapi/common"
	"github.com/amirasaad/smartbank/webapi/notification"
	"github.com/amirasaad/smartbank/webapi/transaction"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// New builds the ledger service and returns the Fiber app serving it.
func New(deps config.Deps) *fiber.App {
	return NewWithService(deps, ledger.NewService(deps))
}

// NewWithService returns the Fiber app for an already built ledger service.
func NewWithService(deps config.Deps, svc *ledger.Service) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return common.ProblemDetailsJSON(c, fe.Message, err, fe.Code)
			}
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	if srv := deps.Config.Server; srv != nil && srv.MaxRequests > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        srv.MaxRequests,
			Expiration: srv.Window,
			KeyGenerator: func(c *fiber.Ctx) string {
				// First hop of X-Forwarded-For, then X-Real-IP, then the peer.
				if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
					if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
						return strings.TrimSpace(forwardedFor[:commaIndex])
					}
					return strings.TrimSpace(forwardedFor)
				}
				if realIP := c.Get("X-Real-IP"); realIP != "" {
					return realIP
				}
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(c, "Too Many Requests",
					errors.New("rate limit exceeded"), fiber.StatusTooManyRequests)
			},
		}))
	}
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "UP"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	account.Routes(app, svc)
	transaction.Routes(app, svc)
	if deps.Notifications != nil {
		notification.Routes(app, deps.Notifications)
	}
	return app
}
