package notification

import (
	"github.com/amirasaad/smartbank/pkg/notification"
	"github.com/amirasaad/smartbank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers the notification endpoints.
//
// Routes:
//   - POST /api/v1/notifications/send : Queue a notification for asynchronous delivery.
func Routes(app *fiber.App, submitter notification.Submitter) {
	app.Post("/api/v1/notifications/send", Send(submitter))
}

// Send returns a handler that persists and enqueues a notification.
// A saturated queue answers 503.
func Send(submitter notification.Submitter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[SendRequest](c)
		if input == nil {
			return err // error response already written
		}
		recipient := input.Recipient
		if recipient == "" {
			recipient = input.UserID
		}
		n, err := submitter.Submit(c.UserContext(), recipient, input.Channel, input.Message)
		if err != nil {
			log.Warnf("Notification not queued: %v", err)
			return common.ProblemDetailsJSON(c, "Notification not queued", err)
		}
		return c.Status(fiber.StatusOK).JSON(QueuedResponse{
			Status:         "QUEUED",
			NotificationID: n.ID.String(),
		})
	}
}
