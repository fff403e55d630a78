// Package models defines the entities the console works with: users,
// catalog books, and rental orders. All fields carry the canonical shapes
// produced by the normalize package; raw backend payloads never reach here.
package models

import "time"

// Role classifies an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the authenticated identity (or an admin-managed account).
// Favorites holds canonical book IDs.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	Favorites []string
}

// IsAdmin reports whether the account has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// HasFavorite reports whether bookID is in the user's favorites.
func (u *User) HasFavorite(bookID string) bool {
	if u == nil {
		return false
	}
	for _, id := range u.Favorites {
		if id == bookID {
			return true
		}
	}
	return false
}

// ToggledFavorites returns a new favorites slice with bookID added if
// absent or removed if present. The receiver is not modified.
func (u *User) ToggledFavorites(bookID string) []string {
	out := make([]string, 0, len(u.Favorites)+1)
	found := false
	for _, id := range u.Favorites {
		if id == bookID {
			found = true
			continue
		}
		out = append(out, id)
	}
	if !found {
		out = append(out, bookID)
	}
	return out
}

// Book is a catalog item. RentedBy is empty when the book is available;
// otherwise it holds the renting user's canonical ID. The backend enforces
// at most one concurrent holder.
type Book struct {
	ID          string
	Title       string
	Author      string
	Year        string
	Image       string
	Description string
	RentedBy    string
}

// Available reports whether the book can be rented.
func (b *Book) Available() bool {
	return b.RentedBy == ""
}

// Order is a rental record. ReturnedAt is nil while the rental is active.
// For a given book the backend allows at most one active order.
type Order struct {
	ID         string
	UserID     string
	BookID     string
	RentedAt   time.Time
	ReturnedAt *time.Time
}

// Active reports whether the order is an open rental.
func (o *Order) Active() bool {
	return o.ReturnedAt == nil
}
