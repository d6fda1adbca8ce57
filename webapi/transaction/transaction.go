package transaction

import (
	"fmt"
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/service/ledger"
	"github.com/amirasaad/smartbank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Routes registers the transaction endpoints.
//
// Routes:
//   - POST /api/v1/transactions                          : Process a transaction of any type.
//   - POST /api/v1/transactions/deposit                  : Deposit into an account.
//   - POST /api/v1/transactions/withdraw                 : Withdraw from an account.
//   - POST /api/v1/transactions/transfer                 : Transfer between two accounts.
//   - GET  /api/v1/transactions/history/:accountId       : History within startDate..endDate.
//   - GET  /api/v1/transactions/history/:accountId/recent: Last 30 days.
//   - GET  /api/v1/transactions/history/:accountId/today : Since midnight UTC.
func Routes(app *fiber.App, svc *ledger.Service) {
	g := app.Group("/api/v1/transactions")
	g.Post("/", ProcessTransaction(svc))
	g.Post("/deposit", Deposit(svc))
	g.Post("/withdraw", Withdraw(svc))
	g.Post("/transfer", Transfer(svc))
	g.Get("/history/:accountId", History(svc))
	g.Get("/history/:accountId/recent", RecentHistory(svc))
	g.Get("/history/:accountId/today", TodayHistory(svc))
}

// respond writes an engine outcome. SUCCESS is 200, admission rejection is
// 429 and any other FAILED outcome is 400 with the same body.
func respond(c *fiber.Ctx, resp *ledger.Response) error {
	status := fiber.StatusOK
	switch {
	case resp.Code == domain.CodeAdmissionRejected:
		status = fiber.StatusTooManyRequests
	case !resp.Succeeded():
		status = fiber.StatusBadRequest
	}
	return common.SuccessResponseJSON(c, status, resp.Message, ToTransactionResponse(resp))
}

func parseOptionalID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ProcessTransaction returns a handler running a transaction of any type.
func ProcessTransaction(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[TransactionRequest](c)
		if input == nil {
			return err // error response already written
		}
		from, err := parseOptionalID(input.FromAccountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err, fiber.StatusBadRequest)
		}
		to, err := parseOptionalID(input.ToAccountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err, fiber.StatusBadRequest)
		}
		log.Infof("Processing %s transaction", input.TransactionType)
		resp, err := svc.ProcessTransaction(c.UserContext(), ledger.Request{
			FromAccountID: from,
			ToAccountID:   to,
			Amount:        input.Amount,
			Kind:          domain.TransactionKind(input.TransactionType),
			Description:   input.Description,
		})
		if err != nil {
			log.Errorf("Failed to process transaction: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to process transaction", err)
		}
		return respond(c, resp)
	}
}

// Deposit returns a handler crediting an account.
func Deposit(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[AccountAmountRequest](c)
		if input == nil {
			return err
		}
		resp, err := svc.Deposit(c.UserContext(), uuid.MustParse(input.AccountID), input.Amount)
		if err != nil {
			log.Errorf("Failed to deposit: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to deposit", err)
		}
		return respond(c, resp)
	}
}

// Withdraw returns a handler debiting an account.
func Withdraw(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[AccountAmountRequest](c)
		if input == nil {
			return err
		}
		resp, err := svc.Withdraw(c.UserContext(), uuid.MustParse(input.AccountID), input.Amount)
		if err != nil {
			log.Errorf("Failed to withdraw: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to withdraw", err)
		}
		return respond(c, resp)
	}
}

// Transfer returns a handler moving funds between accounts.
func Transfer(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}
		resp, err := svc.Transfer(c.UserContext(),
			uuid.MustParse(input.FromAccountID), uuid.MustParse(input.ToAccountID), input.Amount)
		if err != nil {
			log.Errorf("Failed to transfer: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to transfer", err)
		}
		return respond(c, resp)
	}
}

func accountParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("accountId"))
	if err != nil {
		return uuid.Nil, common.ProblemDetailsJSON(c, "Invalid account ID", err,
			"Account ID must be a valid UUID", fiber.StatusBadRequest)
	}
	return id, nil
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %q as a date", domain.ErrValidationFailed, raw)
}

// History returns a handler listing transactions between startDate and endDate.
func History(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := accountParam(c)
		if id == uuid.Nil {
			return err
		}
		start, err := parseTime(c.Query("startDate"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid startDate", err)
		}
		end, err := parseTime(c.Query("endDate"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid endDate", err)
		}
		txs, err := svc.GetHistory(c.UserContext(), id, start, end)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch history", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", ToTransactionDTOs(txs))
	}
}

// RecentHistory returns a handler listing the last 30 days.
func RecentHistory(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := accountParam(c)
		if id == uuid.Nil {
			return err
		}
		txs, err := svc.RecentHistory(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch history", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", ToTransactionDTOs(txs))
	}
}

// TodayHistory returns a handler listing today's transactions.
func TodayHistory(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := accountParam(c)
		if id == uuid.Nil {
			return err
		}
		txs, err := svc.TodayHistory(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch history", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", ToTransactionDTOs(txs))
	}
}
