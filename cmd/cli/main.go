package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/amirasaad/smartbank/infra/initializer"
	"github.com/amirasaad/smartbank/pkg/config"
	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/service/ledger"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

const usage = `Commands:
  create <name> [email] [opening_balance]
  deposit <account_id> <amount>
  withdraw <account_id> <amount>
  transfer <from_account_id> <to_account_id> <amount>
  balance <account_id>
  history <account_id> [today|recent]
  status <account_id> <ACTIVE|INACTIVE|CLOSED>`

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.FgHiBlack)
)

var errUsage = errors.New("invalid arguments")

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		failColor.Fprintln(os.Stderr, "Failed to load configuration:", err) //nolint: errcheck
		os.Exit(1)
	}
	if cfg.Log != nil {
		cfg.Log.Level = 4 // warn and above
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		failColor.Fprintln(os.Stderr, "Failed to initialize:", err) //nolint: errcheck
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Notification.GracePeriod)
		defer cancel()
		_ = deps.Close(ctx)
	}()
	svc := ledger.NewService(deps.Deps)
	ctx := context.Background()

	if len(os.Args) > 1 {
		if err := execute(ctx, svc, os.Args[1:], os.Stdout); err != nil {
			failColor.Fprintln(os.Stderr, err) //nolint: errcheck
			if errors.Is(err, errUsage) {
				fmt.Fprintln(os.Stderr, usage)
			}
		}
		return
	}

	// Without arguments run a shell so the in-memory store survives between commands.
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Println(usage)
	}
	repl(ctx, svc, os.Stdin, os.Stdout, interactive)
}

func repl(ctx context.Context, svc *ledger.Service, in io.Reader, out io.Writer, prompt bool) {
	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(out, "smartbank> ")
		}
		if !scanner.Scan() {
			return
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return
		}
		if err := execute(ctx, svc, args, out); err != nil {
			failColor.Fprintln(out, err) //nolint: errcheck
		}
	}
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid account id %q", errUsage, raw)
	}
	return id, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", errUsage, raw)
	}
	return amount, nil
}

func printResult(out io.Writer, resp *ledger.Response) {
	if !resp.Succeeded() {
		failColor.Fprintf(out, "FAILED [%s] %s\n", resp.Code, resp.Message) //nolint: errcheck
		return
	}
	okColor.Fprintf(out, "%s ", resp.Message) //nolint: errcheck
	dimColor.Fprintf(out, "ref=%s", resp.Reference) //nolint: errcheck
	if resp.BalanceAfter != nil {
		fmt.Fprintf(out, " balance=%s", resp.BalanceAfter.StringFixed(2))
	}
	fmt.Fprintln(out)
}

func execute(ctx context.Context, svc *ledger.Service, args []string, out io.Writer) error {
	need := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("%w: %s needs %d argument(s)", errUsage, args[0], n-1)
		}
		return nil
	}

	switch args[0] {
	case "create":
		if err := need(2); err != nil {
			return err
		}
		req := ledger.CreateAccountRequest{CustomerName: args[1]}
		if len(args) > 2 {
			req.Email = args[2]
		}
		if len(args) > 3 {
			opening, err := parseAmount(args[3])
			if err != nil {
				return err
			}
			req.InitialBalance = opening
		}
		a, err := svc.CreateAccount(ctx, req)
		if err != nil {
			return err
		}
		okColor.Fprintf(out, "Account created: ID=%s Number=%s Balance=%s\n", a.ID, a.Number, a.Balance.StringFixed(2)) //nolint: errcheck
	case "deposit", "withdraw":
		if err := need(3); err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[2])
		if err != nil {
			return err
		}
		var resp *ledger.Response
		if args[0] == "deposit" {
			resp, err = svc.Deposit(ctx, id, amount)
		} else {
			resp, err = svc.Withdraw(ctx, id, amount)
		}
		if err != nil {
			return err
		}
		printResult(out, resp)
	case "transfer":
		if err := need(4); err != nil {
			return err
		}
		from, err := parseID(args[1])
		if err != nil {
			return err
		}
		to, err := parseID(args[2])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[3])
		if err != nil {
			return err
		}
		resp, err := svc.Transfer(ctx, from, to, amount)
		if err != nil {
			return err
		}
		printResult(out, resp)
	case "balance":
		if err := need(2); err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		b, err := svc.GetBalance(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Account %s (%s) balance: %s %s\n", b.AccountNumber, b.Status, b.Balance.StringFixed(2), b.Currency)
	case "history":
		if err := need(2); err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		history := svc.RecentHistory
		if len(args) > 2 && args[2] == "today" {
			history = svc.TodayHistory
		}
		txs, err := history(ctx, id)
		if err != nil {
			return err
		}
		if len(txs) == 0 {
			dimColor.Fprintln(out, "no transactions") //nolint: errcheck
		}
		for _, tx := range txs {
			line := fmt.Sprintf("%s  %-10s %-8s %12s  %s",
				tx.CreatedAt.Format(time.DateTime), tx.Kind, tx.Status, tx.Amount.StringFixed(2), tx.Reference)
			if tx.ErrorMessage != "" {
				line += "  (" + tx.ErrorMessage + ")"
			}
			fmt.Fprintln(out, line)
		}
	case "status":
		if err := need(3); err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		a, err := svc.SetAccountStatus(ctx, id, domain.AccountStatus(strings.ToUpper(args[2])))
		if err != nil {
			return err
		}
		okColor.Fprintf(out, "Account %s is now %s\n", a.Number, a.Status) //nolint: errcheck
	case "help":
		fmt.Fprintln(out, usage)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	return nil
}
