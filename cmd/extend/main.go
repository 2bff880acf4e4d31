// Command extend is a small command line client for the Extend API.
//
// Credentials are read from EXTEND_API_KEY and EXTEND_API_SECRET, or from a
// .env file in the working directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/paywithextend/extend-go"
	"github.com/paywithextend/extend-go/internal/config"
	"go.uber.org/zap"
)

const usage = `usage: extend [-debug] <command> [flags] [args]

commands:
  credit-cards                 list credit cards
  virtual-cards                list virtual cards
  virtual-card <id>            show a virtual card
  create-card                  issue a virtual card
  update-card <id> [flags]     update a virtual card
  cancel-card <id>             cancel a virtual card
  close-card <id>              close a virtual card
  transactions                 list transactions
  transaction <id>             show a transaction
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("extend", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	debug := fs.Bool("debug", false, "log requests")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	logger, err := newLogger(*debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	logger.Debug("running command", zap.String("command", cmd))

	switch cmd {
	case "credit-cards":
		return listCreditCards(ctx, client, cmdArgs, stdout, stderr)
	case "virtual-cards":
		return listVirtualCards(ctx, client, cmdArgs, stdout, stderr)
	case "virtual-card":
		return cardAction(ctx, cmd, cmdArgs, stdout, stderr, client.VirtualCards.Get)
	case "create-card":
		return createCard(ctx, client, cmdArgs, stdout, stderr)
	case "update-card":
		return updateCard(ctx, client, cmdArgs, stdout, stderr)
	case "cancel-card":
		return cardAction(ctx, cmd, cmdArgs, stdout, stderr, client.VirtualCards.Cancel)
	case "close-card":
		return cardAction(ctx, cmd, cmdArgs, stdout, stderr, client.VirtualCards.Close)
	case "transactions":
		return listTransactions(ctx, client, cmdArgs, stdout, stderr)
	case "transaction":
		return showTransaction(ctx, client, cmdArgs, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		fs.Usage()
		return errUsage
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newClient(cfg *config.Config, logger *zap.Logger) (*extend.Client, error) {
	opts := []extend.ClientOption{
		extend.WithLogger(logger),
		extend.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}

	switch {
	case cfg.BaseURL != "":
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		opts = append(opts, extend.WithBaseURL(u))
	case cfg.Stage:
		opts = append(opts, extend.WithStage())
	}

	return extend.New(cfg.APIKey, cfg.APISecret, opts...), nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// singleID parses the flags of a command that takes exactly one id argument.
// Flags may appear before or after the id.
func singleID(fs *flag.FlagSet, args []string) (string, error) {
	var ids []string
	for {
		if err := fs.Parse(args); err != nil {
			return "", err
		}
		if fs.NArg() == 0 {
			break
		}
		ids = append(ids, fs.Arg(0))
		args = fs.Args()[1:]
	}

	if len(ids) != 1 {
		return "", fmt.Errorf("%s: %w: expected one id", fs.Name(), errUsage)
	}
	return ids[0], nil
}

func parseStatuses[T ~string](s string) []T {
	if s == "" {
		return nil
	}

	var out []T
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, T(strings.ToUpper(v)))
		}
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func listCreditCards(ctx context.Context, c *extend.Client, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("credit-cards", stderr)
	status := fs.String("status", "", "comma separated statuses, e.g. ACTIVE")
	search := fs.String("search", "", "search term")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := c.CreditCards.List(ctx, extend.ListCreditCardsParams{
		Statuses: parseStatuses[extend.CreditCardStatus](*status),
		Search:   *search,
	})
	if err != nil {
		return err
	}

	writeCreditCards(stdout, list.CreditCards)
	return nil
}

func listVirtualCards(ctx context.Context, c *extend.Client, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("virtual-cards", stderr)
	status := fs.String("status", "", "comma separated statuses, e.g. ACTIVE,CANCELLED")
	page := fs.Int("page", 0, "zero based page number")
	count := fs.Int("count", 20, "cards per page")
	recipient := fs.String("recipient", "", "recipient id filter")
	all := fs.Bool("all", false, "fetch every page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	params := extend.ListVirtualCardsParams{
		PageParams: extend.PageParams{Page: *page, Count: *count},
		Statuses:   parseStatuses[extend.VirtualCardStatus](*status),
		Recipient:  *recipient,
	}

	if *all {
		var cards []extend.VirtualCard
		for vc, err := range c.VirtualCards.ListIter(ctx, params) {
			if err != nil {
				return err
			}
			cards = append(cards, vc)
		}
		writeVirtualCards(stdout, cards)
		return nil
	}

	list, err := c.VirtualCards.List(ctx, params)
	if err != nil {
		return err
	}

	writeVirtualCards(stdout, list.VirtualCards)
	return nil
}

func cardAction(
	ctx context.Context,
	name string,
	args []string,
	stdout, stderr io.Writer,
	action func(context.Context, string) (*extend.VirtualCard, error),
) error {
	id, err := singleID(newFlagSet(name, stderr), args)
	if err != nil {
		return err
	}

	vc, err := action(ctx, id)
	if err != nil {
		return err
	}

	writeVirtualCard(stdout, vc)
	return nil
}

func createCard(ctx context.Context, c *extend.Client, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("create-card", stderr)
	creditCard := fs.String("credit-card", "", "funding credit card id")
	name := fs.String("name", "", "display name")
	balance := fs.String("balance", "", "balance in dollars, e.g. 25.00")
	notes := fs.String("notes", "", "notes")
	recipient := fs.String("recipient", "", "recipient email")
	cardholder := fs.String("cardholder", "", "cardholder email")
	validTo := fs.String("valid-to", "", "last valid date, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amount, err := extend.ParseCents(*balance)
	if err != nil {
		return fmt.Errorf("parse balance %q: %w", *balance, err)
	}
	to, err := parseDate(*validTo)
	if err != nil {
		return fmt.Errorf("parse valid-to: %w", err)
	}

	vc, err := c.VirtualCards.Create(ctx, extend.CreateVirtualCardRequest{
		CreditCardID: *creditCard,
		DisplayName:  *name,
		BalanceCents: amount,
		Notes:        *notes,
		Recipient:    *recipient,
		Cardholder:   *cardholder,
		ValidTo:      to,
	})
	if err != nil {
		return err
	}

	writeVirtualCard(stdout, vc)
	return nil
}

func updateCard(ctx context.Context, c *extend.Client, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("update-card", stderr)
	name := fs.String("name", "", "display name")
	balance := fs.String("balance", "", "balance in dollars, e.g. 25.00")
	notes := fs.String("notes", "", "notes")
	id, err := singleID(fs, args)
	if err != nil {
		return err
	}

	amount, err := extend.ParseCents(*balance)
	if err != nil {
		return fmt.Errorf("parse balance %q: %w", *balance, err)
	}

	vc, err := c.VirtualCards.Update(ctx, id, extend.UpdateVirtualCardRequest{
		BalanceCents: amount,
		DisplayName:  *name,
		Notes:        *notes,
	})
	if err != nil {
		return err
	}

	writeVirtualCard(stdout, vc)
	return nil
}

func listTransactions(ctx context.Context, c *extend.Client, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("transactions", stderr)
	from := fs.String("from", "", "first date, YYYY-MM-DD")
	to := fs.String("to", "", "last date, YYYY-MM-DD")
	card := fs.String("card", "", "virtual card id filter")
	count := fs.Int("count", 20, "transactions per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fromDate, err := parseDate(*from)
	if err != nil {
		return fmt.Errorf("parse from: %w", err)
	}
	toDate, err := parseDate(*to)
	if err != nil {
		return fmt.Errorf("parse to: %w", err)
	}

	list, err := c.Transactions.List(ctx, extend.ListTransactionsParams{
		PageParams:    extend.PageParams{Count: *count},
		FromDate:      fromDate,
		ToDate:        toDate,
		VirtualCardID: *card,
	})
	if err != nil {
		return err
	}

	writeTransactions(stdout, list.Transactions)
	return nil
}

func showTransaction(ctx context.Context, c *extend.Client, args []string, stdout, stderr io.Writer) error {
	id, err := singleID(newFlagSet("transaction", stderr), args)
	if err != nil {
		return err
	}

	txn, err := c.Transactions.Get(ctx, id)
	if err != nil {
		return err
	}

	writeTransaction(stdout, txn)
	return nil
}
