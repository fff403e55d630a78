package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pz-dev/bibliocli/internal/console/listview"
)

// CmdBooks loads and prints the current catalog page.
func (a *App) CmdBooks(ctx context.Context) error {
	view := a.currentView()
	if err := view.Load(ctx); err != nil {
		return err
	}
	renderBooks(a.out, view.Items(), a.session.Current())
	renderPager(a.out, view.Query(), view.Total())
	return nil
}

// CmdBooksQuery installs a full view state (from one-shot command flags)
// and prints the resulting page.
func (a *App) CmdBooksQuery(ctx context.Context, q listview.Query) error {
	view := a.currentView()
	if err := view.Apply(ctx, q); err != nil {
		return err
	}
	renderBooks(a.out, view.Items(), a.session.Current())
	renderPager(a.out, view.Query(), view.Total())
	return nil
}

// CmdPage jumps to a page of the current view. "next" and "prev" move
// relative to the current page.
func (a *App) CmdPage(ctx context.Context, arg string) error {
	view := a.currentView()
	q := view.Query()
	var page int
	switch arg {
	case "next":
		page = q.Page + 1
	case "prev":
		page = q.Page - 1
	default:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("page wants a number, %q given", arg)
		}
		page = n
	}
	if last := listview.TotalPages(view.Total(), q.Limit); last > 0 && page > last {
		page = last
	}
	return a.CmdBooksQuery(ctx, q.WithPage(page))
}

// CmdSearch filters the catalog by a case-insensitive term; an empty term
// clears the filter. Either way the view snaps back to page 1.
func (a *App) CmdSearch(ctx context.Context, term string) error {
	return a.CmdBooksQuery(ctx, a.currentView().Query().WithSearch(term))
}

// CmdSort reorders the catalog. dir may be empty, "asc" or "desc".
func (a *App) CmdSort(ctx context.Context, field, dir string) error {
	sort, ok := listview.ParseSortField(field)
	if !ok {
		return fmt.Errorf("cannot sort by %q (try: %s)", field, listview.SortFields())
	}
	q := a.currentView().Query().WithSort(sort)
	switch dir {
	case "":
	case "asc":
		q = q.WithDir(listview.Asc)
	case "desc":
		q = q.WithDir(listview.Desc)
	default:
		return fmt.Errorf("direction must be asc or desc, %q given", dir)
	}
	return a.CmdBooksQuery(ctx, q)
}

// CmdBook shows a single catalog item.
func (a *App) CmdBook(ctx context.Context, id string) error {
	b, err := a.catalog.Book(ctx, id)
	if err != nil {
		return err
	}
	renderBook(a.out, b)
	return nil
}

// CmdRent rents a book for the logged-in user.
func (a *App) CmdRent(ctx context.Context, bookID string) error {
	me, err := a.requireLogin()
	if err != nil {
		return err
	}
	book, err := a.catalog.Book(ctx, bookID)
	if err != nil {
		return err
	}
	if !book.Available() {
		if book.RentedBy == me.ID {
			fmt.Fprintln(a.out, "You already have this book.")
			return nil
		}
		fmt.Fprintf(a.out, "%q is rented out right now.\n", book.Title)
		return nil
	}
	order, err := a.catalog.Rent(ctx, &book, me.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Rented %q (order %s).\n", book.Title, order.ID)
	return nil
}

// CmdReturn returns a rented book. The argument is the book ID; the active
// order is looked up among the user's own orders.
func (a *App) CmdReturn(ctx context.Context, bookID string) error {
	me, err := a.requireLogin()
	if err != nil {
		return err
	}
	active, _, err := a.catalog.Orders(ctx, me.ID)
	if err != nil {
		return err
	}
	for _, ov := range active {
		if ov.Order.BookID != bookID && ov.Order.ID != bookID {
			continue
		}
		book, err := a.catalog.Return(ctx, &ov.Order)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Returned %q.\n", book.Title)
		return nil
	}
	fmt.Fprintln(a.out, "No active rental matches that ID.")
	return nil
}

// CmdOrders prints the logged-in user's rentals, active first.
func (a *App) CmdOrders(ctx context.Context) error {
	me, err := a.requireLogin()
	if err != nil {
		return err
	}
	active, history, err := a.catalog.Orders(ctx, me.ID)
	if err != nil {
		return err
	}
	renderOrders(a.out, "Active rentals:", active)
	renderOrders(a.out, "History:", history)
	return nil
}

// CmdFavorites lists the logged-in user's favorite books.
func (a *App) CmdFavorites(ctx context.Context) error {
	me, err := a.requireLogin()
	if err != nil {
		return err
	}
	books, err := a.catalog.Favorites(ctx, me.Favorites)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Fprintln(a.out, "No favorites yet.")
		return nil
	}
	renderBooks(a.out, books, me)
	return nil
}

// CmdFavorite toggles a book in the favorites list.
func (a *App) CmdFavorite(ctx context.Context, bookID string) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.session.ToggleFavorite(ctx, bookID); err != nil {
		return err
	}
	if me := a.session.Current(); me != nil && me.HasFavorite(bookID) {
		fmt.Fprintln(a.out, "Added to favorites.")
	} else {
		fmt.Fprintln(a.out, "Removed from favorites.")
	}
	return nil
}
