// Package client is a typed Go consumer of the rental API. It mirrors the
// backend contract, attaches the bearer token from an observable session
// store, and classifies failures into API errors versus transport errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx response decoded from the backend's error envelope.
type APIError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// --- Response types, mirroring the backend contract ---

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Phone string `json:"phone,omitempty"`
}

type Media struct {
	URL  string `json:"url"`
	Kind string `json:"type"`
}

type Residence struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location"`
	Address     string    `json:"address,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	Type        string    `json:"type"`
	Price       float64   `json:"price"`
	Media       []Media   `json:"media"`
	Amenities   []string  `json:"amenities"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
}

type ResidenceSummary struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Location string  `json:"location"`
	Price    float64 `json:"price"`
	Media    []Media `json:"media,omitempty"`
}

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type Reservation struct {
	ID         string            `json:"id"`
	StartDate  time.Time         `json:"start_date"`
	EndDate    time.Time         `json:"end_date"`
	TotalPrice float64           `json:"total_price"`
	Status     string            `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	Residence  *ResidenceSummary `json:"residence,omitempty"`
	User       *UserSummary      `json:"user,omitempty"`
}

type OwnerStats struct {
	TotalReservations     int64   `json:"totalReservations"`
	ConfirmedReservations int64   `json:"confirmedReservations"`
	PendingReservations   int64   `json:"pendingReservations"`
	CancelledReservations int64   `json:"cancelledReservations"`
	TotalRevenue          float64 `json:"totalRevenue"`
}

type authResponse struct {
	Token string `json:"token,omitempty"`
	User  *User  `json:"user,omitempty"`
}

// --- Request types ---

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone,omitempty"`
}

type CreateReservationInput struct {
	ResidenceID string `json:"residence_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// ResidenceFilter carries the public search parameters.
type ResidenceFilter struct {
	City     string
	Title    string
	MaxPrice float64
}

// CreateResidenceInput is sent as multipart form data. Files holds the
// media uploads in submission order.
type CreateResidenceInput struct {
	Title       string
	Description string
	Location    string
	Address     string
	Reference   string
	Type        string
	Price       float64
	Amenities   []string
	Files       []FileInput
}

type FileInput struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Client talks to one rental API origin.
type Client struct {
	baseURL string
	http    *http.Client
	session *SessionStore
}

// New builds a Client. A nil session store gets a fresh one; consumers that
// share login state across components pass their own.
func New(baseURL string, session *SessionStore) *Client {
	if session == nil {
		session = NewSessionStore()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		session: session,
	}
}

// Session exposes the observable session store for subscription.
func (c *Client) Session() *SessionStore {
	return c.session
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*User, error) {
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", in, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Login authenticates and stores the resulting session, notifying
// subscribers.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	body := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	c.session.Set(Session{Token: resp.Token, User: resp.User})
	return resp.User, nil
}

// Logout clears the session, notifying subscribers.
func (c *Client) Logout() {
	c.session.Clear()
}

// Residences runs the public filtered search.
func (c *Client) Residences(ctx context.Context, filter ResidenceFilter) ([]Residence, error) {
	q := url.Values{}
	if filter.City != "" {
		q.Set("city", filter.City)
	}
	if filter.Title != "" {
		q.Set("title", filter.Title)
	}
	if filter.MaxPrice > 0 {
		q.Set("maxPrice", strconv.FormatFloat(filter.MaxPrice, 'f', -1, 64))
	}
	path := "/api/residences"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []Residence
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Residence fetches one listing.
func (c *Client) Residence(ctx context.Context, id string) (*Residence, error) {
	var out Residence
	if err := c.doJSON(ctx, http.MethodGet, "/api/residences/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateResidence publishes a listing as multipart form data.
func (c *Client) CreateResidence(ctx context.Context, in CreateResidenceInput) (*Residence, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":       in.Title,
		"description": in.Description,
		"location":    in.Location,
		"address":     in.Address,
		"reference":   in.Reference,
		"type":        in.Type,
		"price":       strconv.FormatFloat(in.Price, 'f', -1, 64),
	}
	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("encode form: %w", err)
		}
	}
	if len(in.Amenities) > 0 {
		encoded, err := json.Marshal(in.Amenities)
		if err != nil {
			return nil, fmt.Errorf("encode amenities: %w", err)
		}
		if err := w.WriteField("amenities", string(encoded)); err != nil {
			return nil, fmt.Errorf("encode form: %w", err)
		}
	}
	for _, f := range in.Files {
		part, err := w.CreateFormFile("media", f.Name)
		if err != nil {
			return nil, fmt.Errorf("encode form: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("encode form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}

	var out Residence
	if err := c.do(ctx, http.MethodPost, "/api/residences", &buf, w.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateReservation books a residence.
func (c *Client) CreateReservation(ctx context.Context, in CreateReservationInput) (*Reservation, error) {
	var out Reservation
	if err := c.doJSON(ctx, http.MethodPost, "/api/reservations", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reservation fetches one reservation.
func (c *Client) Reservation(ctx context.Context, id string) (*Reservation, error) {
	var out Reservation
	if err := c.doJSON(ctx, http.MethodGet, "/api/reservations/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TransitionReservation sets a reservation's status.
func (c *Client) TransitionReservation(ctx context.Context, id, status string) (*Reservation, error) {
	body := map[string]string{"status": status}
	var out Reservation
	if err := c.doJSON(ctx, http.MethodPatch, "/api/reservations/"+id+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteReservation removes a reservation.
func (c *Client) DeleteReservation(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/reservations/"+id, nil, nil)
}

// OwnerReservations lists reservations against the caller's residences.
func (c *Client) OwnerReservations(ctx context.Context) ([]Reservation, error) {
	var out []Reservation
	if err := c.doJSON(ctx, http.MethodGet, "/api/reservations/owner", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClientReservations lists the caller's own reservations.
func (c *Client) ClientReservations(ctx context.Context) ([]Reservation, error) {
	var out []Reservation
	if err := c.doJSON(ctx, http.MethodGet, "/api/reservations/client", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OwnerStats fetches the aggregated owner statistics.
func (c *Client) OwnerStats(ctx context.Context) (*OwnerStats, error) {
	var out OwnerStats
	if err := c.doJSON(ctx, http.MethodGet, "/api/reservations/stats/owner", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, reader, contentType, out)
}

// do issues the request, attaching the session token when present. Non-2xx
// responses become *APIError; anything that never produced a response
// surfaces as a wrapped transport error.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope struct {
		Message string   `json:"message"`
		Details []string `json:"details"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && json.Unmarshal(raw, &envelope) == nil && envelope.Message != "" {
		apiErr.Message = envelope.Message
		apiErr.Details = envelope.Details
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
