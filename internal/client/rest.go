package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// REST talks to the server's /v1 API.
type REST struct {
	base  string
	token string
	http  *http.Client
}

// NewREST returns a REST adapter for baseURL (e.g. http://localhost:8080).
// A nil hc gets a client with a 10s timeout.
func NewREST(baseURL, token string, hc *http.Client) *REST {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &REST{base: strings.TrimRight(baseURL, "/"), token: token, http: hc}
}

func (r *REST) Register(ctx context.Context, creds model.Credentials) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := r.do(ctx, http.MethodPost, "/v1/auth/register", creds, &out)
	return out, err
}

func (r *REST) Login(ctx context.Context, creds model.Credentials) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := r.do(ctx, http.MethodPost, "/v1/auth/login", creds, &out)
	return out, err
}

func (r *REST) GetCustomerByEmail(ctx context.Context, email string) (model.Customer, error) {
	var out model.Customer
	err := r.do(ctx, http.MethodGet, "/v1/customers?email="+url.QueryEscape(email), nil, &out)
	return out, err
}

func (r *REST) UpsertCustomer(ctx context.Context, c model.Customer) (model.Customer, error) {
	var out model.Customer
	err := r.do(ctx, http.MethodPut, "/v1/customers", c, &out)
	return out, err
}

func (r *REST) CreateReservation(ctx context.Context, req model.BookingRequest) (model.BookingResult, error) {
	var out model.BookingResult
	err := r.do(ctx, http.MethodPost, "/v1/reservations", req, &out)
	return out, err
}

// CancelReservation posts to the cancel endpoint.  The server derives
// admin rights from the bearer token, so the token is only presented when
// req.Admin asks for them.
func (r *REST) CancelReservation(ctx context.Context, req model.CancelRequest) (model.CancelResult, error) {
	var out model.CancelResult
	token := ""
	if req.Admin {
		token = r.token
	}
	path := "/v1/reservations/" + strconv.FormatUint(req.ReservationID, 10) + "/cancel"
	err := r.send(ctx, http.MethodPost, path, token, map[string]string{"email": req.Email}, &out)
	return out, err
}

func (r *REST) ListReservations(ctx context.Context, page int) (model.ReservationPage, error) {
	var out model.ReservationPage
	err := r.do(ctx, http.MethodGet, "/v1/admin/reservations?page="+strconv.Itoa(page), nil, &out)
	return out, err
}

func (r *REST) do(ctx context.Context, method, path string, in, out any) error {
	return r.send(ctx, method, path, r.token, in, out)
}

func (r *REST) send(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.base+path, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		e := &Error{Status: resp.StatusCode}
		if json.Unmarshal(raw, e) != nil || e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return e
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}
