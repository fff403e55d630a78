// Package normalize is the single ingestion boundary between raw backend
// payloads and the rest of the console. The backend is inconsistent in two
// ways: the primary key arrives as either "_id" or "id", and list payloads
// come in one of three envelope shapes. Everything downstream sees only the
// canonical models produced here.
//
// All functions are pure and idempotent: feeding a canonical payload back
// through them yields the same result.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pz-dev/bibliocli/internal/console/models"
)

// ErrUnknownEnvelope is returned when a payload matches none of the known
// response shapes. Unknown shapes fail loudly instead of decaying into an
// empty list, so backend contract drift is caught at the boundary.
var ErrUnknownEnvelope = errors.New("unknown response envelope")

// flexString accepts a JSON string, number, bool or null and coerces it to
// a string. The backend serializes some fields (year, occasionally ids)
// inconsistently.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*s = flexString(t)
	case float64:
		*s = flexString(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		*s = flexString(strconv.FormatBool(t))
	default:
		return fmt.Errorf("cannot coerce %T to string", v)
	}
	return nil
}

// listEnvelope matches the two wrapped list shapes: {"data":[...]} and
// {"data":{"items":[...]}}.
type listEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type itemsEnvelope struct {
	Items json.RawMessage `json:"items"`
}

func isArray(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return c == '['
		}
	}
	return false
}

func isObject(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return c == '{'
		}
	}
	return false
}

// List unwraps a list payload from any of the accepted envelopes and
// returns the raw elements. Accepted shapes:
//
//	[...]
//	{"data": [...]}
//	{"data": {"items": [...]}}
func List(raw []byte) ([]json.RawMessage, error) {
	body := json.RawMessage(raw)

	if isObject(body) {
		var env listEnvelope
		if err := json.Unmarshal(body, &env); err != nil || env.Data == nil {
			return nil, ErrUnknownEnvelope
		}
		if isObject(env.Data) {
			var inner itemsEnvelope
			if err := json.Unmarshal(env.Data, &inner); err != nil || inner.Items == nil {
				return nil, ErrUnknownEnvelope
			}
			body = inner.Items
		} else {
			body = env.Data
		}
	}

	if !isArray(body) {
		return nil, ErrUnknownEnvelope
	}
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownEnvelope, err)
	}
	return items, nil
}

// Object unwraps a single-object payload: either a bare object or
// {"data": {...}}. A "data" key whose value is an object takes precedence
// over treating the payload as bare.
func Object(raw []byte) (json.RawMessage, error) {
	body := json.RawMessage(raw)
	if !isObject(body) {
		return nil, ErrUnknownEnvelope
	}
	var env listEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Data != nil && isObject(env.Data) {
		return env.Data, nil
	}
	return body, nil
}

// canonicalID picks the primary key out of the two spellings the backend
// uses. "_id" wins when both are present; absence yields "".
func canonicalID(mongoID, plainID flexString) string {
	if mongoID != "" {
		return string(mongoID)
	}
	return string(plainID)
}

type rawUser struct {
	MongoID   flexString   `json:"_id"`
	ID        flexString   `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Role      string       `json:"role"`
	Favorites []flexString `json:"favorites"`
}

// User decodes one raw user object into the canonical model. Missing
// optional fields default; the role defaults to "user".
func User(raw json.RawMessage) (models.User, error) {
	var r rawUser
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.User{}, fmt.Errorf("decode user: %w", err)
	}
	u := models.User{
		ID:    canonicalID(r.MongoID, r.ID),
		Name:  r.Name,
		Email: r.Email,
		Role:  models.Role(r.Role),
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if len(r.Favorites) > 0 {
		u.Favorites = make([]string, len(r.Favorites))
		for i, f := range r.Favorites {
			u.Favorites[i] = string(f)
		}
	}
	return u, nil
}

type rawBook struct {
	MongoID     flexString `json:"_id"`
	ID          flexString `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Year        flexString `json:"year"`
	Image       string     `json:"image"`
	Description string     `json:"description"`
	RentedBy    flexString `json:"rentedBy"`
}

// Book decodes one raw book object into the canonical model.
func Book(raw json.RawMessage) (models.Book, error) {
	var r rawBook
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.Book{}, fmt.Errorf("decode book: %w", err)
	}
	return models.Book{
		ID:          canonicalID(r.MongoID, r.ID),
		Title:       r.Title,
		Author:      r.Author,
		Year:        string(r.Year),
		Image:       r.Image,
		Description: r.Description,
		RentedBy:    string(r.RentedBy),
	}, nil
}

type rawOrder struct {
	MongoID    flexString `json:"_id"`
	ID         flexString `json:"id"`
	UserID     flexString `json:"userId"`
	BookID     flexString `json:"bookId"`
	RentedAt   string     `json:"rentedAt"`
	ReturnedAt *string    `json:"returnedAt"`
}

// Order decodes one raw order object into the canonical model. Timestamps
// are RFC 3339; an unparseable or missing rentedAt becomes the zero time
// rather than an error, matching the tolerance of the rest of the boundary.
func Order(raw json.RawMessage) (models.Order, error) {
	var r rawOrder
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.Order{}, fmt.Errorf("decode order: %w", err)
	}
	o := models.Order{
		ID:     canonicalID(r.MongoID, r.ID),
		UserID: string(r.UserID),
		BookID: string(r.BookID),
	}
	if t, err := time.Parse(time.RFC3339, r.RentedAt); err == nil {
		o.RentedAt = t
	}
	if r.ReturnedAt != nil {
		if t, err := time.Parse(time.RFC3339, *r.ReturnedAt); err == nil {
			o.ReturnedAt = &t
		}
	}
	return o, nil
}

// Users unwraps a list payload and decodes every element.
func Users(raw []byte) ([]models.User, error) {
	return decodeList(raw, User)
}

// Books unwraps a list payload and decodes every element.
func Books(raw []byte) ([]models.Book, error) {
	return decodeList(raw, Book)
}

// Orders unwraps a list payload and decodes every element.
func Orders(raw []byte) ([]models.Order, error) {
	return decodeList(raw, Order)
}

func decodeList[T any](raw []byte, decode func(json.RawMessage) (T, error)) ([]T, error) {
	items, err := List(raw)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		v, err := decode(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Auth is the payload of a successful login or register response: the
// authenticated user plus the issued bearer token.
type Auth struct {
	User  models.User
	Token string
}

type rawAuth struct {
	Token string `json:"token"`
}

// AuthPayload decodes a login/register response body. The token travels
// alongside the user fields inside the data envelope.
func AuthPayload(raw []byte) (Auth, error) {
	obj, err := Object(raw)
	if err != nil {
		return Auth{}, err
	}
	u, err := User(obj)
	if err != nil {
		return Auth{}, err
	}
	var t rawAuth
	if err := json.Unmarshal(obj, &t); err != nil {
		return Auth{}, fmt.Errorf("decode token: %w", err)
	}
	return Auth{User: u, Token: t.Token}, nil
}
