// Package api is the typed HTTP gateway to the book-rental backend. It
// attaches the bearer credential to every call, maps response statuses to
// the package sentinel errors, and pushes every payload through the
// normalize boundary before returning it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/pz-dev/bibliocli/internal/console/models"
	"github.com/pz-dev/bibliocli/internal/console/normalize"
	"github.com/pz-dev/bibliocli/internal/logging"
)

// TokenSource supplies the current bearer credential. An empty string means
// no credential; the Authorization header is omitted.
type TokenSource interface {
	Token() string
}

// Client talks to the remote API. Mutating calls are issued exactly once;
// idempotent reads are retried with bounded exponential backoff.
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func()
	maxRetries     uint64
	retryBase      time.Duration
	log            logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource sets the credential supplier.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHandler registers a callback invoked whenever any call
// maps to ErrUnauthorized, even mid-mutation. The session store uses it to
// clear the credential globally.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithTimeout bounds every request. The original system waited
// indefinitely; that is not the intended contract here.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRetry configures read retries: up to attempts extra tries starting
// from base backoff. Zero attempts disables retrying.
func WithRetry(attempts uint64, base time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = attempts
		c.retryBase = base
	}
}

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Client for the API rooted at baseURL (e.g.
// "http://localhost:4000/api"). Trailing slashes are stripped.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: 15 * time.Second},
		maxRetries: 2,
		retryBase:  250 * time.Millisecond,
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// response is the raw outcome of a call: decoded body bytes plus headers
// (the list endpoints convey the total count in a header).
type response struct {
	body   []byte
	header http.Header
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) (*response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := mapStatus(resp.StatusCode, data)
		c.log.Warn(ctx, "request rejected", "method", method, "path", path, "status", resp.StatusCode)
		if errors.Is(err, ErrUnauthorized) && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, err
	}

	return &response{body: data, header: resp.Header}, nil
}

// get issues an idempotent read, retrying ErrUnavailable with exponential
// backoff. Mutations never go through here.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*response, error) {
	var out *response
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := c.do(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				return retry.RetryableError(err)
			}
			return err
		}
		out = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// totalCount extracts the collection size for a paginated list response:
// X-Total-Count first, then a Content-Range "items a-b/total" fallback,
// finally the page length when neither header is usable.
func totalCount(h http.Header, pageLen int) int {
	if v := h.Get("X-Total-Count"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			return n
		}
	}
	if cr := h.Get("Content-Range"); strings.Contains(cr, "/") {
		after := cr[strings.LastIndex(cr, "/")+1:]
		if n, err := strconv.Atoi(strings.TrimSpace(after)); err == nil && n >= 0 {
			return n
		}
	}
	return pageLen
}

// --- auth ---

// Login authenticates and returns the user plus the issued token.
func (c *Client) Login(ctx context.Context, email, password string) (normalize.Auth, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return normalize.Auth{}, err
	}
	return normalize.AuthPayload(resp.body)
}

// Register creates an account and returns the user plus the issued token.
// Email uniqueness is the server's authority.
func (c *Client) Register(ctx context.Context, name, email, password string) (normalize.Auth, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/register", nil, map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return normalize.Auth{}, err
	}
	return normalize.AuthPayload(resp.body)
}

// Me validates the current credential and returns the identity behind it.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	resp, err := c.get(ctx, "/auth/me", nil)
	if err != nil {
		return models.User{}, err
	}
	obj, err := normalize.Object(resp.body)
	if err != nil {
		return models.User{}, err
	}
	return normalize.User(obj)
}

// --- books ---

// ListBooks fetches one catalog page. The query values are the wire
// contract of the catalog endpoint: page, limit, q, sort, order.
func (c *Client) ListBooks(ctx context.Context, query url.Values) ([]models.Book, int, error) {
	resp, err := c.get(ctx, "/books", query)
	if err != nil {
		return nil, 0, err
	}
	books, err := normalize.Books(resp.body)
	if err != nil {
		return nil, 0, err
	}
	return books, totalCount(resp.header, len(books)), nil
}

// BooksByIDs fetches the given books in one call (?ids=a,b,c). Used for
// favorites and for joining orders with their books.
func (c *Client) BooksByIDs(ctx context.Context, ids []string) ([]models.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := url.Values{"ids": []string{strings.Join(ids, ",")}}
	resp, err := c.get(ctx, "/books", q)
	if err != nil {
		return nil, err
	}
	return normalize.Books(resp.body)
}

// GetBook fetches a single book.
func (c *Client) GetBook(ctx context.Context, id string) (models.Book, error) {
	resp, err := c.get(ctx, "/books/"+url.PathEscape(id), nil)
	if err != nil {
		return models.Book{}, err
	}
	obj, err := normalize.Object(resp.body)
	if err != nil {
		return models.Book{}, err
	}
	return normalize.Book(obj)
}

// CreateBook adds a catalog entry (admin).
func (c *Client) CreateBook(ctx context.Context, b models.Book) (models.Book, error) {
	payload := map[string]any{
		"title":       b.Title,
		"author":      b.Author,
		"year":        b.Year,
		"image":       b.Image,
		"description": b.Description,
	}
	resp, err := c.do(ctx, http.MethodPost, "/books", nil, payload)
	if err != nil {
		return models.Book{}, err
	}
	obj, err := normalize.Object(resp.body)
	if err != nil {
		return models.Book{}, err
	}
	return normalize.Book(obj)
}

// UpdateBook applies a partial update (admin edits, and clearing rentedBy
// on return). Use nil map values to send explicit JSON nulls.
func (c *Client) UpdateBook(ctx context.Context, id string, patch map[string]any) (models.Book, error) {
	resp, err := c.do(ctx, http.MethodPatch, "/books/"+url.PathEscape(id), nil, patch)
	if err != nil {
		return models.Book{}, err
	}
	obj, err := normalize.Object(resp.body)
	if err != nil {
		return models.Book{}, err
	}
	return normalize.Book(obj)
}

// ReleaseBook clears the holder, making the book available again. Second
// half of the two-step return flow.
func (c *Client) ReleaseBook(ctx context.Context, id string) (models.Book, error) {
	return c.UpdateBook(ctx, id, map[string]any{"rentedBy": nil})
}

// DeleteBook removes a catalog entry (admin).
func (c *Client) DeleteBook(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/books/"+url.PathEscape(id), nil, nil)
	return err
}

// --- users ---

// ListUsers fetches all accounts (admin).
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	resp, err := c.get(ctx, "/users", nil)
	if err != nil {
		return nil, err
	}
	return normalize.Users(resp.body)
}

// CreateUser adds an account (admin).
func (c *Client) CreateUser(ctx context.Context, u models.User, password string) (models.User, error) {
	payload := map[string]any{
		"name":     u.Name,
		"email":    u.Email,
		"role":     u.Role,
		"password": password,
	}
	resp, err := c.do(ctx, http.MethodPost, "/users", nil, payload)
	if err != nil {
		return models.User{}, err
	}
	obj, err := normalize.Object(resp.body)
	if err != nil {
		return models.User{}, err
	}
	return normalize.User(obj)
}

// UpdateUser applies a partial update: profile edits, role changes, and the
// favorites patch behind the optimistic toggle.
func (c *Client) UpdateUser(ctx context.Context, id string, patch map[string]any) (models.User, error) {
	resp, err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), nil, patch)
	if err != nil {
		return models.User{}, err
	}
	obj, err := normalize.Object(resp.body)
	if err != nil {
		return models.User{}, err
	}
	return normalize.User(obj)
}

// DeleteUser removes an account (admin).
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
	return err
}

// --- orders ---

// ListOrders fetches orders, optionally scoped to one user.
func (c *Client) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var q url.Values
	if userID != "" {
		q = url.Values{"userId": []string{userID}}
	}
	resp, err := c.get(ctx, "/orders", q)
	if err != nil {
		return nil, err
	}
	return normalize.Orders(resp.body)
}

// CreateOrder rents a book. The server creates the order and locks the book
// in one atomic step; the client must never try to lock the book separately
// first, that would reintroduce the race the server prevents. A 409 means
// the book is already held.
func (c *Client) CreateOrder(ctx context.Context, bookID string) (models.Order, error) {
	resp, err := c.do(ctx, http.MethodPost, "/orders", nil, map[string]string{"bookId": bookID})
	if err != nil {
		return models.Order{}, err
	}
	obj, err := normalize.Object(resp.body)
	if err != nil {
		return models.Order{}, err
	}
	return normalize.Order(obj)
}

// CloseOrder marks the rental ended. First half of the two-step return
// flow; the caller follows up with ReleaseBook and must re-fetch
// authoritative state if that second call fails.
func (c *Client) CloseOrder(ctx context.Context, id string, returnedAt time.Time) (models.Order, error) {
	payload := map[string]any{"returnedAt": returnedAt.UTC().Format(time.RFC3339)}
	resp, err := c.do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id), nil, payload)
	if err != nil {
		return models.Order{}, err
	}
	obj, err := normalize.Object(resp.body)
	if err != nil {
		return models.Order{}, err
	}
	return normalize.Order(obj)
}
