package account

import (
	"fmt"
	"testing"

	"github.com/amirasaad/smartbank/pkg/service/ledger"
	"github.com/amirasaad/smartbank/pkg/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AccountTestSuite struct {
	suite.Suite
	app *fiber.App
}

func (s *AccountTestSuite) SetupTest() {
	s.app = fiber.New()
	Routes(s.app, ledger.NewService(testutils.MemoryDeps(nil)))
}

func TestAccountTestSuite(t *testing.T) {
	suite.Run(t, new(AccountTestSuite))
}

func (s *AccountTestSuite) create(body string) AccountDTO {
	resp := testutils.MakeRequest(s.T(), s.app, fiber.MethodPost, "/api/v1/accounts", body)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	var out AccountDTO
	testutils.DecodeData(s.T(), resp, &out)
	return out
}

func (s *AccountTestSuite) TestCreateAccount() {
	s.Run("Create account successfully", func() {
		a := s.create(`{"customerName":"Meera Iyer","email":"meera@example.com","mobileNumber":"9876543210","initialBalance":"1500.00"}`)
		s.Equal("ACTIVE", a.Status)
		s.Regexp(`^SB\d{12}$`, a.AccountNumber)
		s.True(a.Balance.Equal(decimal.RequireFromString("1500")))
	})

	s.Run("Missing customer name", func() {
		resp := testutils.MakeRequest(s.T(), s.app, fiber.MethodPost, "/api/v1/accounts", `{"email":"x@example.com"}`)
		s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	})

	s.Run("Negative opening balance", func() {
		resp := testutils.MakeRequest(s.T(), s.app, fiber.MethodPost, "/api/v1/accounts",
			`{"customerName":"Meera Iyer","initialBalance":-5}`)
		s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	})
}

func (s *AccountTestSuite) TestGetBalance() {
	a := s.create(`{"customerName":"Meera Iyer","initialBalance":42.10}`)

	s.Run("Existing account", func() {
		resp := testutils.MakeRequest(s.T(), s.app, fiber.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/balance", a.ID), "")
		s.Equal(fiber.StatusOK, resp.StatusCode)
		var b BalanceDTO
		testutils.DecodeData(s.T(), resp, &b)
		s.Equal("INR", b.Currency)
		s.True(b.Balance.Equal(decimal.RequireFromString("42.10")))
	})

	s.Run("Unknown account", func() {
		resp := testutils.MakeRequest(s.T(), s.app, fiber.MethodGet,
			"/api/v1/accounts/00000000-0000-0000-0000-000000000001/balance", "")
		s.Equal(fiber.StatusNotFound, resp.StatusCode)
		p := testutils.DecodeProblem(s.T(), resp)
		s.Equal("ACCOUNT_NOT_FOUND", p.Code)
	})

	s.Run("Invalid id", func() {
		resp := testutils.MakeRequest(s.T(), s.app, fiber.MethodGet, "/api/v1/accounts/abc/balance", "")
		s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	})
}

func (s *AccountTestSuite) TestUpdateStatus() {
	a := s.create(`{"customerName":"Meera Iyer"}`)
	path := fmt.Sprintf("/api/v1/accounts/%s/status", a.ID)

	resp := testutils.MakeRequest(s.T(), s.app, fiber.MethodPatch, path, `{"status":"INACTIVE"}`)
	s.Equal(fiber.StatusOK, resp.StatusCode)

	resp = testutils.MakeRequest(s.T(), s.app, fiber.MethodPatch, path, `{"status":"FROZEN"}`)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)

	resp = testutils.MakeRequest(s.T(), s.app, fiber.MethodPatch, path, `{"status":"CLOSED"}`)
	s.Equal(fiber.StatusOK, resp.StatusCode)

	resp = testutils.MakeRequest(s.T(), s.app, fiber.MethodPatch, path, `{"status":"ACTIVE"}`)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}
