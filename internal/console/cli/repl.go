package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pz-dev/bibliocli/internal/console/api"
	"github.com/pz-dev/bibliocli/internal/console/session"
)

// printlnFn is a test seam for user-facing REPL output. In tests, replace
// it with a stub.
var printlnFn = fmt.Println

// replIface is the minimal command surface the REPL needs to operate. The
// real App satisfies it; tests can provide a lightweight stub.
type replIface interface {
	LoggedIn() bool
	Admin() bool
	CmdLogin(ctx context.Context, email string) error
	CmdRegister(ctx context.Context) error
	CmdLogout() error
	CmdWhoami() error
	CmdProfile(ctx context.Context) error
	CmdBooks(ctx context.Context) error
	CmdPage(ctx context.Context, arg string) error
	CmdSearch(ctx context.Context, term string) error
	CmdSort(ctx context.Context, field, dir string) error
	CmdBook(ctx context.Context, id string) error
	CmdRent(ctx context.Context, id string) error
	CmdReturn(ctx context.Context, id string) error
	CmdOrders(ctx context.Context) error
	CmdFavorites(ctx context.Context) error
	CmdFavorite(ctx context.Context, id string) error
	CmdUsers(ctx context.Context, term, sortBy, dir string) error
	CmdUserAdd(ctx context.Context) error
	CmdUserEdit(ctx context.Context, id string) error
	CmdUserRm(ctx context.Context, id string) error
	CmdBookAdd(ctx context.Context) error
	CmdBookEdit(ctx context.Context, id string) error
	CmdBookRm(ctx context.Context, id string) error
	CmdUserOrders(ctx context.Context, userID string) error
}

// LoggedIn reports whether a session is active.
func (a *App) LoggedIn() bool { return a.session.LoggedIn() }

// Admin reports whether the active session has the admin role.
func (a *App) Admin() bool { return a.session.Current().IsAdmin() }

func replStatus(a replIface) string {
	switch {
	case !a.LoggedIn():
		return ""
	case a.Admin():
		return "(admin) "
	default:
		return "(user) "
	}
}

func replReport(err error) {
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNotLoggedIn):
		printlnFn("Please log in first (login).")
	case errors.Is(err, api.ErrForbidden):
		printlnFn("This command needs the admin role.")
	case errors.Is(err, api.ErrConflict):
		printlnFn("Too late, someone else already rented it.")
	case errors.Is(err, api.ErrUnauthorized):
		printlnFn("Session expired, please log in again.")
	case errors.Is(err, api.ErrUnavailable):
		printlnFn("The server is unreachable right now, try again later.")
	default:
		printlnFn("Error:", err)
	}
}

// runREPL is the interactive loop. It reads a line, parses the first token
// as the command, dispatches to a, and reports errors back to the user.
// Exits on scanner EOF or "exit"/"quit".
func runREPL(ctx context.Context, a replIface, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("biblio %s> ", replStatus(a)))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		arg := func(i int) string {
			if i < len(args) {
				return args[i]
			}
			return ""
		}

		switch cmd {
		case "help":
			printHelp(a)

		case "login":
			replReport(a.CmdLogin(ctx, arg(0)))
		case "register":
			replReport(a.CmdRegister(ctx))
		case "logout":
			replReport(a.CmdLogout())
		case "whoami":
			replReport(a.CmdWhoami())
		case "profile":
			replReport(a.CmdProfile(ctx))

		case "b", "books":
			replReport(a.CmdBooks(ctx))
		case "page", "next", "prev":
			p := arg(0)
			if cmd != "page" {
				p = cmd
			}
			if p == "" {
				printlnFn("Usage: page <n> | next | prev")
				continue
			}
			replReport(a.CmdPage(ctx, p))
		case "search":
			replReport(a.CmdSearch(ctx, strings.Join(args, " ")))
		case "sort":
			if len(args) == 0 {
				printlnFn("Usage: sort <field> [asc|desc]")
				continue
			}
			replReport(a.CmdSort(ctx, arg(0), arg(1)))
		case "show":
			if len(args) == 0 {
				printlnFn("Usage: show <bookID>")
				continue
			}
			replReport(a.CmdBook(ctx, arg(0)))
		case "rent":
			if len(args) == 0 {
				printlnFn("Usage: rent <bookID>")
				continue
			}
			replReport(a.CmdRent(ctx, arg(0)))
		case "return":
			if len(args) == 0 {
				printlnFn("Usage: return <bookID|orderID>")
				continue
			}
			replReport(a.CmdReturn(ctx, arg(0)))
		case "orders":
			replReport(a.CmdOrders(ctx))
		case "favs", "favorites":
			replReport(a.CmdFavorites(ctx))
		case "fav", "favorite":
			if len(args) == 0 {
				printlnFn("Usage: fav <bookID>")
				continue
			}
			replReport(a.CmdFavorite(ctx, arg(0)))

		case "users":
			replReport(a.CmdUsers(ctx, arg(0), arg(1), arg(2)))
		case "useradd":
			replReport(a.CmdUserAdd(ctx))
		case "useredit":
			if len(args) == 0 {
				printlnFn("Usage: useredit <userID>")
				continue
			}
			replReport(a.CmdUserEdit(ctx, arg(0)))
		case "userrm":
			if len(args) == 0 {
				printlnFn("Usage: userrm <userID>")
				continue
			}
			replReport(a.CmdUserRm(ctx, arg(0)))
		case "bookadd":
			replReport(a.CmdBookAdd(ctx))
		case "bookedit":
			if len(args) == 0 {
				printlnFn("Usage: bookedit <bookID>")
				continue
			}
			replReport(a.CmdBookEdit(ctx, arg(0)))
		case "bookrm":
			if len(args) == 0 {
				printlnFn("Usage: bookrm <bookID>")
				continue
			}
			replReport(a.CmdBookRm(ctx, arg(0)))
		case "userorders":
			if len(args) == 0 {
				printlnFn("Usage: userorders <userID>")
				continue
			}
			replReport(a.CmdUserOrders(ctx, arg(0)))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func printHelp(a replIface) {
	if !a.LoggedIn() {
		printlnFn("Available commands: login [email], register, books, page/next/prev, search, sort, show, help, exit")
		return
	}
	printlnFn("Catalog:  (b)ooks, page <n>, next, prev, search <term>, sort <field> [asc|desc], show <id>")
	printlnFn("Rentals:  rent <id>, return <id>, orders")
	printlnFn("Account:  fav <id>, favs, profile, whoami, logout")
	if a.Admin() {
		printlnFn("Admin:    users [term] [name|email|role] [asc|desc], useradd, useredit <id>, userrm <id>, bookadd, bookedit <id>, bookrm <id>, userorders <userID>")
	}
	printlnFn("Other:    help, exit")
}
