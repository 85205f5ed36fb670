package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bookline-dev/bookline/internal/models"
)

// Client represents an HTTP client for the Bookline API
type Client struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
}

// New creates a new API client for the given environment base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetClientID attaches the per-installation identifier sent with every
// request so the backend can correlate sessions from the same install.
func (c *Client) SetClientID(id string) {
	c.clientID = id
}

// BaseURL returns the environment base URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do executes a JSON request and decodes a 2xx response body into out (when
// out is non-nil). Failures come back as *APIError, classified once here.
func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return &APIError{Kind: KindUnknown, Message: fmt.Sprintf("failed to marshal request: %v", err)}
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &APIError{Kind: KindUnknown, Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", bearer))
	}
	if c.clientID != "" {
		req.Header.Set("X-Client-ID", c.clientID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return netError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return statusError(resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{Kind: KindUnknown, Message: fmt.Sprintf("failed to decode response: %v", err)}
		}
	}
	return nil
}

// AuthResponse is the payload returned by the auth endpoints
type AuthResponse struct {
	Token string            `json:"token"`
	User  models.UserRecord `json:"user"`
}

// Login authenticates with email and password and returns a bearer token
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	reqBody := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{
		Email:    email,
		Password: password,
	}

	var authResp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", reqBody, &authResp); err != nil {
		return nil, err
	}
	return &authResp, nil
}

// Signup registers a new account assembled by the signup wizard
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*AuthResponse, error) {
	var authResp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", "", req, &authResp); err != nil {
		return nil, err
	}
	return &authResp, nil
}

// VerifyToken asks the backend to validate the given token and returns a
// fresh token plus the user record
func (c *Client) VerifyToken(ctx context.Context, bearer string) (*AuthResponse, error) {
	var authResp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify", bearer, nil, &authResp); err != nil {
		return nil, err
	}
	return &authResp, nil
}

// RefreshToken exchanges a near-expiry (or expired but refreshable) token
// for a new one
func (c *Client) RefreshToken(ctx context.Context, bearer string) (*AuthResponse, error) {
	var authResp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", bearer, nil, &authResp); err != nil {
		return nil, err
	}
	return &authResp, nil
}

// SignOut invalidates the session server-side. Callers clear local state
// regardless of the result.
func (c *Client) SignOut(ctx context.Context, bearer string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/signout", bearer, nil, nil)
}

// Health probes the API root. Used by the network prober; any 2xx means the
// backend is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", "", nil, nil)
}

// ListContacts returns contact-form submissions (requires auth)
func (c *Client) ListContacts(ctx context.Context, bearer string) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := c.do(ctx, http.MethodGet, "/api/contacts", bearer, nil, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// CreateContact submits a contact-form message. No auth required: visitors
// use the contact form before they have an account.
func (c *Client) CreateContact(ctx context.Context, contact models.Contact) error {
	return c.do(ctx, http.MethodPost, "/api/contacts", "", contact, nil)
}

// ListReviews returns published customer reviews
func (c *Client) ListReviews(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	if err := c.do(ctx, http.MethodGet, "/api/reviews", "", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// CreateReview submits a review (requires auth)
func (c *Client) CreateReview(ctx context.Context, bearer string, review models.Review) error {
	return c.do(ctx, http.MethodPost, "/api/reviews", bearer, review, nil)
}

// ListServices returns the bookable services
func (c *Client) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if err := c.do(ctx, http.MethodGet, "/api/services", "", nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// UploadDocumentRequest is the document upload payload
// CreateBooking submits an appointment request for the authenticated account
func (c *Client) CreateBooking(ctx context.Context, bearer string, booking models.Booking) (*models.Booking, error) {
	var confirmed models.Booking
	if err := c.do(ctx, http.MethodPost, "/api/bookings", bearer, booking, &confirmed); err != nil {
		return nil, err
	}
	return &confirmed, nil
}

type UploadDocumentRequest struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Content []byte `json:"content"`
}

// UploadDocument attaches a document to the authenticated account
func (c *Client) UploadDocument(ctx context.Context, bearer string, req UploadDocumentRequest) (*models.Document, error) {
	var doc models.Document
	if err := c.do(ctx, http.MethodPost, "/api/documents", bearer, req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns the authenticated account's documents
func (c *Client) ListDocuments(ctx context.Context, bearer string) ([]models.Document, error) {
	var docs []models.Document
	if err := c.do(ctx, http.MethodGet, "/api/documents", bearer, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocument removes a document by ID
func (c *Client) DeleteDocument(ctx context.Context, bearer, documentID string) error {
	return c.do(ctx, http.MethodDelete, "/api/documents/"+documentID, bearer, nil, nil)
}

// EmailRequest is a pre-rendered transactional email handed to the API's
// mail endpoint
type EmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// SendEmail submits a rendered HTML email for delivery
func (c *Client) SendEmail(ctx context.Context, bearer string, req EmailRequest) error {
	return c.do(ctx, http.MethodPost, "/api/email/send", bearer, req, nil)
}
