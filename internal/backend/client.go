package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/Skotchmaster/hortifood/internal/models"
)

const (
	DefaultLoginPath = "/user/login"
	AltLoginPath     = "/auth/login"
	UsersPath        = "/user"
)

var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrUnexpectedStatus  = errors.New("unexpected status")
)

type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed with status: %d", e.Path, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

type Client struct {
	baseURL    string
	loginPath  string
	httpClient *http.Client
}

type Option func(*Client)

func WithLoginPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.loginPath = path
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		loginPath: DefaultLoginPath,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Jar:     jar,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type createUserRequest struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// User is the backend's user object. The name arrives as "nome" from the
// canonical backend and as "name" from older deployments.
type User struct {
	ID    models.UserID `json:"id"`
	Nome  string        `json:"nome,omitempty"`
	Name  string        `json:"name,omitempty"`
	Email string        `json:"email"`
}

func (u *User) Identity() (*models.UserIdentity, error) {
	if u == nil {
		return nil, fmt.Errorf("user object missing: %w", ErrMalformedResponse)
	}
	name := u.Nome
	if strings.TrimSpace(name) == "" {
		name = u.Name
	}
	id := &models.UserIdentity{ID: u.ID, Name: name, Email: u.Email}
	if !id.Valid() {
		return nil, fmt.Errorf("user requires id, name and email: %w", ErrMalformedResponse)
	}
	return id, nil
}

type loginResponse struct {
	User *User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.UserIdentity, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, c.loginPath, loginRequest{Email: email, Senha: password}, &resp); err != nil {
		return nil, err
	}
	return resp.User.Identity()
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*models.UserIdentity, error) {
	var resp User
	if err := c.do(ctx, http.MethodPost, UsersPath, createUserRequest{Nome: name, Email: email, Senha: password}, &resp); err != nil {
		return nil, err
	}
	return resp.Identity()
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, UsersPath, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{Path: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %v: %w", err, ErrMalformedResponse)
	}
	return nil
}
