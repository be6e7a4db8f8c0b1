package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/resell/internal/auth"
	"github.com/erazemk/resell/internal/client"
	"github.com/erazemk/resell/internal/market"
	"github.com/erazemk/resell/internal/model"
)

var errUsage = errors.New("usage")

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"register": cmdRegister,
	"login":    cmdLogin,
	"logout":   cmdLogout,
	"whoami":   cmdWhoami,
	"feed":     cmdFeed,
	"search":   cmdSearch,
	"show":     cmdShow,
	"sell":     cmdSell,
	"edit":     cmdEdit,
	"delete":   cmdDelete,
	"buy":      cmdBuy,
	"photo":    cmdPhoto,
	"history":  cmdHistory,
}

var commandArgs = map[string]string{
	"register": "-u <name> -e <email> [-p <password>]",
	"login":    "-u <name> [-p <password>]",
	"logout":   "",
	"whoami":   "",
	"feed":     "[-page n] [-per-page n] [-all] [-brand b] [-condition c] [-min p] [-max p] [-size s]",
	"search":   "[-page n] [-per-page n] <query>",
	"show":     "<id>",
	"sell":     "-name <n> -brand <b> -condition <c> -price <p> -size <s>",
	"edit":     "<id> [-name <n>] [-brand <b>] [-condition <c>] [-price <p>] [-size <s>]",
	"delete":   "<id>",
	"buy":      "<id>",
	"photo":    "<id> <file>",
	"history":  "",
}

// describe turns an error into a message for the user.
func describe(err error) string {
	switch {
	case errors.Is(err, model.ErrNotLoggedIn), errors.Is(err, client.ErrAuthRequired):
		return "you are not logged in"
	case errors.Is(err, model.ErrOwnItem):
		return "you cannot buy your own item"
	case errors.Is(err, model.ErrNotOwner):
		return "that item belongs to another seller"
	case errors.Is(err, model.ErrNotAvailable):
		return "that item is no longer available"
	case errors.Is(err, client.ErrNotFound):
		return "no such item"
	}
	return err.Error()
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseID parses a positive item id.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errUsage
	}
	return id, nil
}

// readPassword reads a password line from stdin when none was given.
func readPassword(a *app, password string) (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Fprint(a.stdout, "Password: ")
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	fmt.Fprintln(a.stdout)
	return strings.TrimRight(line, "\r\n"), nil
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlags("register")
	username := fs.String("u", "", "")
	email := fs.String("e", "", "")
	password := fs.String("p", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() > 0 || *username == "" || *email == "" {
		return errUsage
	}

	pw, err := readPassword(a, *password)
	if err != nil {
		return err
	}

	id, err := a.session.Register(ctx, model.Registration{Username: *username, Password: pw, Email: *email})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Registered and logged in as %s.\n", id.Username)
	return nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login")
	username := fs.String("u", "", "")
	password := fs.String("p", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() > 0 || *username == "" {
		return errUsage
	}

	pw, err := readPassword(a, *password)
	if err != nil {
		return err
	}

	id, err := a.session.Login(ctx, model.Credentials{Username: *username, Password: pw})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Logged in as %s.\n", id.Username)
	return nil
}

func cmdLogout(ctx context.Context, a *app, args []string) error {
	if len(args) > 0 {
		return errUsage
	}
	a.session.Logout(ctx)
	fmt.Fprintln(a.stdout, "Logged out.")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, args []string) error {
	if len(args) > 0 {
		return errUsage
	}

	id := a.session.Identity()
	if id == nil {
		fmt.Fprintln(a.stdout, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.stdout, "Logged in as %s.\n", id.Username)

	// Peek does not verify the signature.
	if claims, err := auth.Peek(a.session.Token()); err == nil && claims.ExpiresAt != nil {
		if claims.Expired(time.Now()) {
			fmt.Fprintln(a.stdout, "Session expired, log in again.")
			return nil
		}
		fmt.Fprintf(a.stdout, "Session valid until %s.\n", claims.ExpiresAt.Time.Local().Format(time.DateTime))
	}

	if profile, err := a.client.Me(ctx); err == nil {
		fmt.Fprintf(a.stdout, "Email: %s\nBalance: %s\n", profile.Email, formatPrice(profile.Balance))
	}
	return nil
}

const defaultPerPage = 10

func pagingFlags(name string) (*flag.FlagSet, *int, *int) {
	fs := newFlags(name)
	page := fs.Int("page", 1, "")
	perPage := fs.Int("per-page", defaultPerPage, "")
	return fs, page, perPage
}

// conditionFlag binds a case-insensitive condition flag to c.
func conditionFlag(fs *flag.FlagSet, c *model.Condition) {
	fs.Func("condition", "", func(s string) error {
		v := model.Condition(strings.ToUpper(s))
		if !v.Valid() {
			return fmt.Errorf("unknown condition %q", s)
		}
		*c = v
		return nil
	})
}

func cmdFeed(ctx context.Context, a *app, args []string) error {
	var filter model.FeedFilter
	fs, page, perPage := pagingFlags("feed")
	all := fs.Bool("all", false, "")
	fs.StringVar(&filter.Brand, "brand", "", "")
	conditionFlag(fs, &filter.Condition)
	fs.Float64Var(&filter.Lowest, "min", 0, "")
	fs.Float64Var(&filter.Highest, "max", 0, "")
	fs.StringVar(&filter.Size, "size", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() > 0 || *page < 1 {
		return errUsage
	}
	if err := filter.Validate(); err != nil {
		return err
	}

	pager := a.market.Pager("", filter, *page-1, *perPage)
	p, err := pager.Load(ctx)
	if err != nil {
		return err
	}
	printPage(a.stdout, p)

	if !*all {
		return nil
	}
	for {
		p, err = pager.Next(ctx)
		if errors.Is(err, market.ErrNoPage) {
			return nil
		}
		if err != nil {
			return err
		}
		printPage(a.stdout, p)
	}
}

func cmdSearch(ctx context.Context, a *app, args []string) error {
	fs, page, perPage := pagingFlags("search")
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 || *page < 1 {
		return errUsage
	}

	pager := a.market.Pager(strings.Join(fs.Args(), " "), model.FeedFilter{}, *page-1, *perPage)
	p, err := pager.Load(ctx)
	if err != nil {
		return err
	}
	printPage(a.stdout, p)
	return nil
}

// showFeed prints the first feed page as it stands after a change.
func showFeed(ctx context.Context, a *app) error {
	pager := a.market.Pager("", model.FeedFilter{}, 0, defaultPerPage)
	if _, err := pager.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout)
	printPage(a.stdout, pager.Current())
	return nil
}

// lookup fetches the item named by the single id argument.
func lookup(ctx context.Context, a *app, args []string) (*model.Item, error) {
	if len(args) != 1 {
		return nil, errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return nil, err
	}
	return a.market.Lookup(ctx, id)
}

func cmdShow(ctx context.Context, a *app, args []string) error {
	item, err := lookup(ctx, a, args)
	if err != nil {
		return err
	}
	printItem(a.stdout, item)
	return nil
}

// itemFlags binds the ItemRequest fields to fs, starting from req.
func itemFlags(fs *flag.FlagSet, req *model.ItemRequest) {
	fs.StringVar(&req.Name, "name", req.Name, "")
	fs.StringVar(&req.Brand, "brand", req.Brand, "")
	conditionFlag(fs, &req.Condition)
	fs.Float64Var(&req.Price, "price", req.Price, "")
	fs.StringVar(&req.Size, "size", req.Size, "")
}

func cmdSell(ctx context.Context, a *app, args []string) error {
	var req model.ItemRequest
	fs := newFlags("sell")
	itemFlags(fs, &req)
	if err := fs.Parse(args); err != nil || fs.NArg() > 0 {
		return errUsage
	}
	if err := req.Validate(); err != nil {
		return err
	}

	item, err := a.market.Sell(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Listed item %d.\n", item.ID)
	return nil
}

func cmdEdit(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	item, err := lookup(ctx, a, args[:1])
	if err != nil {
		return err
	}

	req := model.ItemRequest{
		Name:      item.Name,
		Brand:     item.Brand,
		Condition: item.Condition,
		Price:     item.Price,
		Size:      item.Size,
	}
	fs := newFlags("edit")
	itemFlags(fs, &req)
	if err := fs.Parse(args[1:]); err != nil || fs.NArg() > 0 {
		return errUsage
	}

	updated, err := a.market.Edit(ctx, item, req)
	if err != nil {
		return err
	}
	printItem(a.stdout, updated)
	return showFeed(ctx, a)
}

func cmdDelete(ctx context.Context, a *app, args []string) error {
	item, err := lookup(ctx, a, args)
	if err != nil {
		return err
	}
	if err := a.market.Delete(ctx, item); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Deleted item %d.\n", item.ID)
	return showFeed(ctx, a)
}

func cmdBuy(ctx context.Context, a *app, args []string) error {
	item, err := lookup(ctx, a, args)
	if err != nil {
		return err
	}
	if err := a.market.Purchase(ctx, item); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Bought %s for %s.\n", item.Name, formatPrice(item.Price))
	return showFeed(ctx, a)
}

func cmdPhoto(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	item, err := lookup(ctx, a, args[:1])
	if err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	if err := a.market.Photo(ctx, item, f); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Photo attached to item %d.\n", item.ID)
	return nil
}

func cmdHistory(ctx context.Context, a *app, args []string) error {
	if len(args) > 0 {
		return errUsage
	}
	id := a.session.Identity()
	if id == nil {
		return model.ErrNotLoggedIn
	}

	txs, err := a.client.Transactions(ctx)
	if err != nil {
		return err
	}
	printTransactions(a.stdout, id.Username, txs)
	return nil
}
