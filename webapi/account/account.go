package account

import (
	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/service/ledger"
	"github.com/amirasaad/smartbank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Routes registers HTTP routes for account-related operations.
//
// Routes:
//   - POST  /api/v1/accounts             : Open a new account.
//   - GET   /api/v1/accounts/:id/balance : Retrieve the balance of the specified account.
//   - PATCH /api/v1/accounts/:id/status  : Change the status of the specified account.
func Routes(app *fiber.App, svc *ledger.Service) {
	g := app.Group("/api/v1/accounts")
	g.Post("/", CreateAccount(svc))
	g.Get("/:id/balance", GetBalance(svc))
	g.Patch("/:id/status", UpdateStatus(svc))
}

// CreateAccount returns a Fiber handler opening a new ACTIVE account.
// @Summary Open a new account
// @Description Creates an account with an optional opening balance. Returns the created account.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body CreateAccountRequest true "Account details"
// @Success 201 {object} common.Response "Account created successfully"
// @Failure 400 {object} common.ProblemDetails "Invalid request"
// @Failure 500 {object} common.ProblemDetails "Internal server error"
// @Router /api/v1/accounts [post]
func CreateAccount(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err // error response already written
		}
		a, err := svc.CreateAccount(c.UserContext(), ledger.CreateAccountRequest{
			CustomerName:   input.CustomerName,
			Email:          input.Email,
			Mobile:         input.MobileNumber,
			InitialBalance: input.InitialBalance,
		})
		if err != nil {
			log.Errorf("Failed to create account: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to create account", err)
		}
		log.Infof("Account created: %s", a.Number)
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created successfully", ToAccountDTO(a))
	}
}

// GetBalance returns a Fiber handler for retrieving the balance of an account.
// @Summary Get account balance
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response "Balance fetched"
// @Failure 400 {object} common.ProblemDetails "Invalid request"
// @Failure 404 {object} common.ProblemDetails "Account not found"
// @Router /api/v1/accounts/{id}/balance [get]
func GetBalance(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			log.Errorf("Invalid account ID for balance: %v", err)
			return common.ProblemDetailsJSON(c, "Invalid account ID", err, "Account ID must be a valid UUID", fiber.StatusBadRequest)
		}
		balance, err := svc.GetBalance(c.UserContext(), id)
		if err != nil {
			log.Errorf("Failed to fetch balance for account ID %s: %v", id, err)
			return common.ProblemDetailsJSON(c, "Failed to fetch balance", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance fetched", ToBalanceDTO(balance))
	}
}

// UpdateStatus returns a Fiber handler changing the status of an account.
// A CLOSED account cannot be reopened.
func UpdateStatus(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err, "Account ID must be a valid UUID", fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[UpdateStatusRequest](c)
		if input == nil {
			return err
		}
		a, err := svc.SetAccountStatus(c.UserContext(), id, domain.AccountStatus(input.Status))
		if err != nil {
			log.Errorf("Failed to update status for account ID %s: %v", id, err)
			return common.ProblemDetailsJSON(c, "Failed to update account status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account status updated", ToAccountDTO(a))
	}
}
