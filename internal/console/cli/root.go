package cli

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pz-dev/bibliocli/internal/console/config"
	"github.com/pz-dev/bibliocli/internal/console/listview"
	"github.com/pz-dev/bibliocli/internal/logging"
)

// NewRootCmd builds the command tree. Running the bare binary starts the
// interactive REPL; subcommands cover one-shot use from scripts. All
// commands share one App, wired in PersistentPreRunE so flags can overlay
// the config file before anything touches the network.
func NewRootCmd() *cobra.Command {
	var (
		app        *App
		configPath string
		serverURL  string
		timeout    time.Duration
	)

	root := &cobra.Command{
		Use:          "bibliocli",
		Short:        "Terminal console for the book rental service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if serverURL != "" {
				cfg.BaseURL = serverURL
			}
			if timeout > 0 {
				cfg.RequestTimeout = timeout
			}
			log := logging.NewDefault(logging.ParseLevel(cfg.LogLevel))
			app, err = NewApp(cfg, log)
			if err != nil {
				return err
			}
			if err := app.Init(cmd.Context()); err != nil {
				// transient: start logged out, the credential survives
				// for the next run
				fmt.Fprintln(os.Stderr, "warning: could not restore session:", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(app.out, "Book rental console (type 'help' for commands)")
			runREPL(cmd.Context(), app, bufio.NewScanner(os.Stdin))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON config file")
	root.PersistentFlags().StringVar(&serverURL, "server", "", "backend base URL (overrides config)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 0, "per-request timeout (overrides config)")

	login := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in and persist the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var email string
			if len(args) == 1 {
				email = args[0]
			}
			return app.CmdLogin(cmd.Context(), email)
		},
	}

	register := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return app.CmdRegister(cmd.Context()) },
	}

	var (
		profName  string
		profEmail string
		profPass  string
	)
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Edit your name, email or password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if profName == "" && profEmail == "" && profPass == "" {
				return app.CmdProfile(cmd.Context())
			}
			return app.CmdProfileSet(cmd.Context(), profName, profEmail, profPass)
		},
	}
	profile.Flags().StringVar(&profName, "name", "", "new display name")
	profile.Flags().StringVar(&profEmail, "email", "", "new email address")
	profile.Flags().StringVar(&profPass, "password", "", "new password")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Drop the persisted session",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return app.CmdLogout() },
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return app.CmdWhoami() },
	}

	var (
		page   int
		limit  int
		search string
		sortBy string
		order  string
	)
	books := &cobra.Command{
		Use:   "books",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := listview.DefaultQuery()
			if app.cfg.PageLimit > 0 {
				q.Limit = app.cfg.PageLimit
			}
			if limit > 0 {
				q = q.WithLimit(limit)
			}
			if search != "" {
				q = q.WithSearch(search)
			}
			if sortBy != "" {
				f, ok := listview.ParseSortField(sortBy)
				if !ok {
					return fmt.Errorf("cannot sort by %q (try: %s)", sortBy, listview.SortFields())
				}
				q = q.WithSort(f)
			}
			switch order {
			case "":
			case "asc":
				q = q.WithDir(listview.Asc)
			case "desc":
				q = q.WithDir(listview.Desc)
			default:
				return fmt.Errorf("--order must be asc or desc")
			}
			q = q.WithPage(page)
			return app.CmdBooksQuery(cmd.Context(), q)
		},
	}
	books.Flags().IntVar(&page, "page", 1, "page number")
	books.Flags().IntVar(&limit, "limit", 0, "page size")
	books.Flags().StringVarP(&search, "search", "q", "", "filter by title or author")
	books.Flags().StringVar(&sortBy, "sort", "", "sort field: "+listview.SortFields())
	books.Flags().StringVar(&order, "order", "", "sort direction: asc or desc")

	book := &cobra.Command{
		Use:   "book <id>",
		Short: "Show one catalog item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.CmdBook(cmd.Context(), args[0])
		},
	}

	rent := &cobra.Command{
		Use:   "rent <bookID>",
		Short: "Rent a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.CmdRent(cmd.Context(), args[0])
		},
	}

	ret := &cobra.Command{
		Use:   "return <bookID|orderID>",
		Short: "Return a rented book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.CmdReturn(cmd.Context(), args[0])
		},
	}

	orders := &cobra.Command{
		Use:   "orders [userID]",
		Short: "List rentals (your own, or any user's as admin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return app.CmdUserOrders(cmd.Context(), args[0])
			}
			return app.CmdOrders(cmd.Context())
		},
	}

	favorites := &cobra.Command{
		Use:   "favorites [bookID]",
		Short: "List favorites, or toggle one by ID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return app.CmdFavorite(cmd.Context(), args[0])
			}
			return app.CmdFavorites(cmd.Context())
		},
	}

	admin := &cobra.Command{
		Use:   "admin",
		Short: "Administration commands",
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}
	var (
		userSearch string
		userSort   string
		userOrder  string
	)
	usersList := &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.CmdUsers(cmd.Context(), userSearch, userSort, userOrder)
		},
	}
	usersList.Flags().StringVarP(&userSearch, "search", "q", "", "filter by name, email or role")
	usersList.Flags().StringVar(&userSort, "sort", "", "sort field: name, email or role")
	usersList.Flags().StringVar(&userOrder, "order", "", "sort direction: asc or desc")

	users.AddCommand(
		usersList,
		&cobra.Command{
			Use:   "add",
			Short: "Create an account",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return app.CmdUserAdd(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "edit <id>",
			Short: "Edit an account",
			Args:  cobra.ExactArgs(1),
			RunE:  func(cmd *cobra.Command, args []string) error { return app.CmdUserEdit(cmd.Context(), args[0]) },
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete an account",
			Args:  cobra.ExactArgs(1),
			RunE:  func(cmd *cobra.Command, args []string) error { return app.CmdUserRm(cmd.Context(), args[0]) },
		},
	)

	manage := &cobra.Command{
		Use:   "books",
		Short: "Manage the catalog",
	}
	manage.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the catalog",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return app.CmdBooks(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "add",
			Short: "Create a catalog item",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return app.CmdBookAdd(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "edit <id>",
			Short: "Edit a catalog item",
			Args:  cobra.ExactArgs(1),
			RunE:  func(cmd *cobra.Command, args []string) error { return app.CmdBookEdit(cmd.Context(), args[0]) },
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete a catalog item",
			Args:  cobra.ExactArgs(1),
			RunE:  func(cmd *cobra.Command, args []string) error { return app.CmdBookRm(cmd.Context(), args[0]) },
		},
	)

	adminOrders := &cobra.Command{
		Use:   "orders <userID>",
		Short: "List a user's rentals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.CmdUserOrders(cmd.Context(), args[0])
		},
	}
	admin.AddCommand(users, manage, adminOrders)

	repl := &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive console (default)",
		Args:  cobra.NoArgs,
		RunE:  root.RunE,
	}

	root.AddCommand(login, register, profile, logout, whoami, books, book, rent, ret, orders, favorites, admin, repl)
	return root
}
