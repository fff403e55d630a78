package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pz-dev/bibliocli/internal/console/models"
)

// CmdUsers lists accounts, optionally filtered by a free-text term over
// name, email and role and sorted by one of those fields. The backend has
// no query parameters for this endpoint, so both happen client-side.
// Admin only.
func (a *App) CmdUsers(ctx context.Context, term, sortBy, dir string) error {
	if _, err := a.requireAdmin(); err != nil {
		return err
	}
	if sortBy != "" && sortBy != "name" && sortBy != "email" && sortBy != "role" {
		return fmt.Errorf("cannot sort users by %q (try: name, email, role)", sortBy)
	}
	if dir != "" && dir != "asc" && dir != "desc" {
		return fmt.Errorf("direction must be asc or desc, %q given", dir)
	}
	users, err := a.admin.ListUsers(ctx)
	if err != nil {
		return err
	}
	renderUsers(a.out, visibleUsers(users, term, sortBy, dir))
	return nil
}

// visibleUsers sorts a copy of users by the given field (name by default,
// case-insensitive) and keeps only the entries whose name, email or role
// contains term.
func visibleUsers(users []models.User, term, sortBy, dir string) []models.User {
	out := make([]models.User, len(users))
	copy(out, users)

	key := func(u models.User) string {
		switch sortBy {
		case "email":
			return strings.ToLower(u.Email)
		case "role":
			return strings.ToLower(string(u.Role))
		default:
			return strings.ToLower(u.Name)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if dir == "desc" {
			return key(out[i]) > key(out[j])
		}
		return key(out[i]) < key(out[j])
	})

	q := strings.ToLower(strings.TrimSpace(term))
	if q == "" {
		return out
	}
	kept := out[:0]
	for _, u := range out {
		if strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Email), q) ||
			strings.Contains(strings.ToLower(string(u.Role)), q) {
			kept = append(kept, u)
		}
	}
	return kept
}

// CmdUserAdd creates an account interactively. Admin only.
func (a *App) CmdUserAdd(ctx context.Context) error {
	if _, err := a.requireAdmin(); err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	role, err := GetSimpleText(a.reader, "Role (user/admin)", a.out)
	if err != nil {
		return err
	}
	if role != string(models.RoleUser) && role != string(models.RoleAdmin) {
		return fmt.Errorf("role must be user or admin, %q given", role)
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	created, err := a.admin.CreateUser(ctx, models.User{
		Name:  name,
		Email: email,
		Role:  models.Role(role),
	}, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created user %s (%s)\n", created.ID, created.Email)
	return nil
}

// CmdUserEdit patches an account; empty answers leave fields unchanged.
// Admin only.
func (a *App) CmdUserEdit(ctx context.Context, id string) error {
	if _, err := a.requireAdmin(); err != nil {
		return err
	}
	patch := map[string]any{}
	for _, f := range []struct{ prompt, key string }{
		{"New name", "name"},
		{"New email", "email"},
		{"New role (user/admin)", "role"},
	} {
		v, err := GetOptionalText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		if v != "" {
			patch[f.key] = v
		}
	}
	if r, ok := patch["role"].(string); ok && r != string(models.RoleUser) && r != string(models.RoleAdmin) {
		return fmt.Errorf("role must be user or admin, %q given", r)
	}
	if len(patch) == 0 {
		fmt.Fprintln(a.out, "Nothing to change.")
		return nil
	}
	updated, err := a.admin.UpdateUser(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated user %s (%s)\n", updated.ID, updated.Email)
	return nil
}

// CmdUserRm deletes an account after confirmation. Admin only; deleting
// yourself is refused.
func (a *App) CmdUserRm(ctx context.Context, id string) error {
	me, err := a.requireAdmin()
	if err != nil {
		return err
	}
	if id == me.ID {
		return fmt.Errorf("refusing to delete the account you are logged in with")
	}
	ok, err := GetConfirmation(a.reader, fmt.Sprintf("Delete user %s?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err := a.admin.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "User deleted.")
	return nil
}

// CmdBookAdd creates a catalog item interactively. Admin only.
func (a *App) CmdBookAdd(ctx context.Context) error {
	if _, err := a.requireAdmin(); err != nil {
		return err
	}
	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	author, err := GetSimpleText(a.reader, "Author", a.out)
	if err != nil {
		return err
	}
	year, err := GetOptionalText(a.reader, "Year", a.out)
	if err != nil {
		return err
	}
	description, err := GetOptionalText(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(author) == "" {
		return fmt.Errorf("title and author are required")
	}

	created, err := a.admin.CreateBook(ctx, models.Book{
		Title:       title,
		Author:      author,
		Year:        year,
		Description: description,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created book %s (%q)\n", created.ID, created.Title)
	return nil
}

// CmdBookEdit patches a catalog item; empty answers leave fields
// unchanged. Admin only.
func (a *App) CmdBookEdit(ctx context.Context, id string) error {
	if _, err := a.requireAdmin(); err != nil {
		return err
	}
	current, err := a.catalog.Book(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Editing %q by %s\n", current.Title, current.Author)

	patch := map[string]any{}
	for _, f := range []struct{ prompt, key string }{
		{"New title", "title"},
		{"New author", "author"},
		{"New year", "year"},
		{"New description", "description"},
	} {
		v, err := GetOptionalText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		if v != "" {
			patch[f.key] = v
		}
	}
	if len(patch) == 0 {
		fmt.Fprintln(a.out, "Nothing to change.")
		return nil
	}
	updated, err := a.admin.UpdateBook(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated book %s (%q)\n", updated.ID, updated.Title)
	return nil
}

// CmdBookRm deletes a catalog item after confirmation. Admin only; a book
// that is currently rented out is refused.
func (a *App) CmdBookRm(ctx context.Context, id string) error {
	if _, err := a.requireAdmin(); err != nil {
		return err
	}
	book, err := a.catalog.Book(ctx, id)
	if err != nil {
		return err
	}
	if !book.Available() {
		return fmt.Errorf("%q is rented out; it must be returned before deletion", book.Title)
	}
	ok, err := GetConfirmation(a.reader, fmt.Sprintf("Delete %q?", book.Title), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err := a.admin.DeleteBook(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Book deleted.")
	return nil
}

// CmdUserOrders prints another user's rentals. Admin only.
func (a *App) CmdUserOrders(ctx context.Context, userID string) error {
	if _, err := a.requireAdmin(); err != nil {
		return err
	}
	active, history, err := a.catalog.Orders(ctx, userID)
	if err != nil {
		return err
	}
	renderOrders(a.out, "Active rentals:", active)
	renderOrders(a.out, "History:", history)
	return nil
}
