// Package catalog implements the user-facing flows over books and orders:
// browsing the paginated catalog, renting, the two-step return, and the
// order history views. It owns no durable state; every view refetches on
// entry and the backend stays the single authority.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/pz-dev/bibliocli/internal/console/listview"
	"github.com/pz-dev/bibliocli/internal/console/models"
	"github.com/pz-dev/bibliocli/internal/console/optimistic"
	"github.com/pz-dev/bibliocli/internal/logging"
)

// API is the slice of the remote client the catalog flows use.
type API interface {
	ListBooks(ctx context.Context, query url.Values) ([]models.Book, int, error)
	BooksByIDs(ctx context.Context, ids []string) ([]models.Book, error)
	GetBook(ctx context.Context, id string) (models.Book, error)
	CreateOrder(ctx context.Context, bookID string) (models.Order, error)
	CloseOrder(ctx context.Context, id string, returnedAt time.Time) (models.Order, error)
	ReleaseBook(ctx context.Context, id string) (models.Book, error)
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)
}

// Service wires the catalog flows to the remote API.
type Service struct {
	api API
	log logging.Logger
	now func() time.Time
}

// NewService creates a catalog service.
func NewService(a API, log logging.Logger) *Service {
	if log == nil {
		log = logging.Discard()
	}
	return &Service{api: a, log: log, now: time.Now}
}

// Browse returns a list-view controller over the catalog. Each call makes
// a fresh controller: views own their fetched copy and refetch on entry,
// there is no shared cache.
func (s *Service) Browse() *listview.Controller[models.Book] {
	return listview.NewController(func(ctx context.Context, q listview.Query) ([]models.Book, int, error) {
		return s.api.ListBooks(ctx, q.Values())
	}, s.log)
}

// Book fetches a single catalog item by its canonical ID.
func (s *Service) Book(ctx context.Context, id string) (models.Book, error) {
	return s.api.GetBook(ctx, id)
}

// Rent orders the book for userID. The holder field flips optimistically;
// the backend creates the order and locks the book in one atomic call, and
// a conflict (someone else got there first) rolls the holder back.
//
// The created order is returned on success.
func (s *Service) Rent(ctx context.Context, book *models.Book, userID string) (models.Order, error) {
	var order models.Order
	err := optimistic.Attempt(ctx, &book.RentedBy, userID, func(ctx context.Context) (*string, error) {
		o, err := s.api.CreateOrder(ctx, book.ID)
		if err != nil {
			return nil, err
		}
		order = o
		// the response is the order, not the book; the optimistic holder
		// stands until the next catalog fetch
		return nil, nil
	})
	if err != nil {
		return models.Order{}, err
	}
	s.log.Info(ctx, "book rented", "book", book.ID, "order", order.ID)
	return order, nil
}

// Return closes the rental. From the user's point of view this is one
// operation, but it is two remote effects: end the order, then clear the
// book's holder. If the second call fails after the first succeeded the
// local guess is worthless, so the authoritative book state is refetched
// and returned alongside the error.
func (s *Service) Return(ctx context.Context, order *models.Order) (models.Book, error) {
	closed, err := s.api.CloseOrder(ctx, order.ID, s.now())
	if err != nil {
		return models.Book{}, err
	}
	*order = closed

	book, err := s.api.ReleaseBook(ctx, order.BookID)
	if err != nil {
		s.log.Warn(ctx, "holder clear failed after order close, refetching", "order", order.ID, "book", order.BookID, "err", err)
		authoritative, ferr := s.api.GetBook(ctx, order.BookID)
		if ferr != nil {
			return models.Book{}, fmt.Errorf("release book: %w", err)
		}
		return authoritative, fmt.Errorf("release book: %w", err)
	}
	s.log.Info(ctx, "book returned", "book", book.ID, "order", order.ID)
	return book, nil
}

// OrderView joins an order with its book for display. Book is nil when the
// catalog entry no longer exists.
type OrderView struct {
	Order models.Order
	Book  *models.Book
}

// Orders fetches a user's orders split into active rentals and history,
// with their books joined in a single ids fetch.
func (s *Service) Orders(ctx context.Context, userID string) (active, history []OrderView, err error) {
	orders, err := s.api.ListOrders(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	seen := map[string]struct{}{}
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		if o.BookID == "" {
			continue
		}
		if _, ok := seen[o.BookID]; ok {
			continue
		}
		seen[o.BookID] = struct{}{}
		ids = append(ids, o.BookID)
	}

	byID := map[string]models.Book{}
	if len(ids) > 0 {
		books, err := s.api.BooksByIDs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		for _, b := range books {
			byID[b.ID] = b
		}
	}

	for _, o := range orders {
		view := OrderView{Order: o}
		if b, ok := byID[o.BookID]; ok {
			book := b
			view.Book = &book
		}
		if o.Active() {
			active = append(active, view)
		} else {
			history = append(history, view)
		}
	}
	return active, history, nil
}

// Favorites fetches the books behind the identity's favorite IDs.
func (s *Service) Favorites(ctx context.Context, ids []string) ([]models.Book, error) {
	return s.api.BooksByIDs(ctx, ids)
}
