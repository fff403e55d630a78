package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pz-dev/bibliocli/internal/console/api"
)

type fakeRepl struct {
	loggedIn bool
	admin    bool

	calls []string
	args  []string
}

func (f *fakeRepl) record(name string, args ...string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args...)
	return nil
}

func (f *fakeRepl) LoggedIn() bool { return f.loggedIn }
func (f *fakeRepl) Admin() bool    { return f.admin }

func (f *fakeRepl) CmdLogin(ctx context.Context, email string) error {
	f.loggedIn = true
	return f.record("login", email)
}
func (f *fakeRepl) CmdRegister(ctx context.Context) error { return f.record("register") }
func (f *fakeRepl) CmdLogout() error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeRepl) CmdWhoami() error                          { return f.record("whoami") }
func (f *fakeRepl) CmdProfile(ctx context.Context) error      { return f.record("profile") }
func (f *fakeRepl) CmdBooks(ctx context.Context) error        { return f.record("books") }
func (f *fakeRepl) CmdPage(ctx context.Context, arg string) error {
	return f.record("page", arg)
}
func (f *fakeRepl) CmdSearch(ctx context.Context, term string) error {
	return f.record("search", term)
}
func (f *fakeRepl) CmdSort(ctx context.Context, field, dir string) error {
	return f.record("sort", field, dir)
}
func (f *fakeRepl) CmdBook(ctx context.Context, id string) error   { return f.record("show", id) }
func (f *fakeRepl) CmdRent(ctx context.Context, id string) error   { return f.record("rent", id) }
func (f *fakeRepl) CmdReturn(ctx context.Context, id string) error { return f.record("return", id) }
func (f *fakeRepl) CmdOrders(ctx context.Context) error            { return f.record("orders") }
func (f *fakeRepl) CmdFavorites(ctx context.Context) error         { return f.record("favorites") }
func (f *fakeRepl) CmdFavorite(ctx context.Context, id string) error {
	return f.record("favorite", id)
}
func (f *fakeRepl) CmdUsers(ctx context.Context, term, sortBy, dir string) error {
	return f.record("users", term, sortBy, dir)
}
func (f *fakeRepl) CmdUserAdd(ctx context.Context) error { return f.record("useradd") }
func (f *fakeRepl) CmdUserEdit(ctx context.Context, id string) error {
	return f.record("useredit", id)
}
func (f *fakeRepl) CmdUserRm(ctx context.Context, id string) error { return f.record("userrm", id) }
func (f *fakeRepl) CmdBookAdd(ctx context.Context) error           { return f.record("bookadd") }
func (f *fakeRepl) CmdBookEdit(ctx context.Context, id string) error {
	return f.record("bookedit", id)
}
func (f *fakeRepl) CmdBookRm(ctx context.Context, id string) error { return f.record("bookrm", id) }
func (f *fakeRepl) CmdUserOrders(ctx context.Context, userID string) error {
	return f.record("userorders", userID)
}

func muteREPL(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

func TestRunREPL_DispatchSequence(t *testing.T) {
	muteREPL(t)

	input := strings.Join([]string{
		"help",
		"login bob@example.com",
		"books",
		"next",
		"page 3",
		"search animal farm",
		"sort title asc",
		"show b1",
		"rent b1",
		"return b1",
		"orders",
		"fav b1",
		"favs",
		"whoami",
		"nonsense",
		"logout",
		"exit",
	}, "\n")

	f := &fakeRepl{}
	runREPL(context.Background(), f, bufio.NewScanner(strings.NewReader(input)))

	want := []string{
		"login", "books", "page", "page", "search", "sort", "show",
		"rent", "return", "orders", "favorite", "favorites", "whoami", "logout",
	}
	if len(f.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", f.calls, want)
	}
	for i := range want {
		if f.calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q (all: %v)", i, f.calls[i], want[i], f.calls)
		}
	}
}

func TestRunREPL_ArgumentsReachHandlers(t *testing.T) {
	muteREPL(t)

	input := "login bob@example.com\nsearch animal farm\nsort year desc\nquit\n"
	f := &fakeRepl{}
	runREPL(context.Background(), f, bufio.NewScanner(strings.NewReader(input)))

	want := []string{"bob@example.com", "animal farm", "year", "desc"}
	if len(f.args) != len(want) {
		t.Fatalf("args = %v, want %v", f.args, want)
	}
	for i := range want {
		if f.args[i] != want[i] {
			t.Fatalf("arg %d = %q, want %q", i, f.args[i], want[i])
		}
	}
}

func TestRunREPL_UsersArgumentsReachHandler(t *testing.T) {
	muteREPL(t)

	input := "users admin role desc\nusers\nquit\n"
	f := &fakeRepl{loggedIn: true, admin: true}
	runREPL(context.Background(), f, bufio.NewScanner(strings.NewReader(input)))

	require.Equal(t, []string{"users", "users"}, f.calls)
	require.Equal(t, []string{"admin", "role", "desc", "", "", ""}, f.args)
}

func TestReplReport_ConflictMessage(t *testing.T) {
	var got []string
	orig := printlnFn
	printlnFn = func(args ...any) (int, error) {
		for _, a := range args {
			got = append(got, fmt.Sprint(a))
		}
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })

	replReport(fmt.Errorf("create order: %w", api.ErrConflict))

	require.Len(t, got, 1)
	require.Contains(t, got[0], "already rented")
}

func TestRunREPL_UsageLinesDoNotDispatch(t *testing.T) {
	muteREPL(t)

	// commands that need an argument get a usage line instead of a call
	input := "show\nrent\nreturn\nfav\nuseredit\nuserrm\nbookedit\nbookrm\nuserorders\npage\nsort\nquit\n"
	f := &fakeRepl{loggedIn: true}
	runREPL(context.Background(), f, bufio.NewScanner(strings.NewReader(input)))

	if len(f.calls) != 0 {
		t.Fatalf("unexpected calls: %v", f.calls)
	}
}

func TestRunREPL_EOFExits(t *testing.T) {
	muteREPL(t)

	f := &fakeRepl{}
	runREPL(context.Background(), f, bufio.NewScanner(strings.NewReader("books\n")))

	if len(f.calls) != 1 || f.calls[0] != "books" {
		t.Fatalf("calls = %v", f.calls)
	}
}

func TestRunREPL_BlankLinesIgnored(t *testing.T) {
	muteREPL(t)

	f := &fakeRepl{}
	runREPL(context.Background(), f, bufio.NewScanner(strings.NewReader("\n\n   \nexit\n")))

	if len(f.calls) != 0 {
		t.Fatalf("unexpected calls: %v", f.calls)
	}
}
