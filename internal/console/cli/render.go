package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pz-dev/bibliocli/internal/console/catalog"
	"github.com/pz-dev/bibliocli/internal/console/listview"
	"github.com/pz-dev/bibliocli/internal/console/models"
)

func renderBooks(w io.Writer, books []models.Book, me *models.User) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tYEAR\tSTATUS\t")
	for _, b := range books {
		status := "available"
		if !b.Available() {
			status = "rented"
			if me != nil && b.RentedBy == me.ID {
				status = "rented by you"
			}
		}
		star := ""
		if me != nil && me.HasFavorite(b.ID) {
			star = " *"
		}
		fmt.Fprintf(tw, "%s\t%s%s\t%s\t%s\t%s\t\n", b.ID, b.Title, star, b.Author, orDash(b.Year), status)
	}
	tw.Flush()
}

func renderBook(w io.Writer, b models.Book) {
	fmt.Fprintf(w, "ID:     %s\n", b.ID)
	fmt.Fprintf(w, "Title:  %s\n", b.Title)
	fmt.Fprintf(w, "Author: %s\n", b.Author)
	fmt.Fprintf(w, "Year:   %s\n", orDash(b.Year))
	if b.Description != "" {
		fmt.Fprintf(w, "About:  %s\n", b.Description)
	}
	if b.Available() {
		fmt.Fprintln(w, "Status: available")
	} else {
		fmt.Fprintf(w, "Status: rented (user %s)\n", b.RentedBy)
	}
}

func renderUsers(w io.Writer, users []models.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\t")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", u.ID, u.Name, u.Email, u.Role)
	}
	tw.Flush()
}

func renderOrders(w io.Writer, title string, orders []catalog.OrderView) {
	fmt.Fprintln(w, title)
	if len(orders) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  ORDER\tBOOK\tRENTED\tRETURNED\t")
	for _, o := range orders {
		book := o.Order.BookID
		if o.Book != nil {
			book = o.Book.Title
		}
		returned := "-"
		if o.Order.ReturnedAt != nil {
			returned = o.Order.ReturnedAt.Format(time.RFC3339)
		}
		rented := "-"
		if !o.Order.RentedAt.IsZero() {
			rented = o.Order.RentedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t\n", o.Order.ID, book, rented, returned)
	}
	tw.Flush()
}

// renderPager prints the windowed page row, e.g. "[1] 2 3 ... 10", with the
// current page in brackets and collapsed runs as "...".
func renderPager(w io.Writer, q listview.Query, total int) {
	pages := listview.Pages(q.Page, total, q.Limit)
	if pages == nil {
		return
	}
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		switch {
		case p == listview.Gap:
			parts = append(parts, "...")
		case p == q.Page:
			parts = append(parts, fmt.Sprintf("[%d]", p))
		default:
			parts = append(parts, fmt.Sprintf("%d", p))
		}
	}
	fmt.Fprintf(w, "Page %s of %d (%d items)\n", strings.Join(parts, " "), listview.TotalPages(total, q.Limit), total)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
