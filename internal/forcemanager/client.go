package forcemanager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ibertrade/fmbridge/internal/config"
)

// Config parameter keys shared with the rest of the process.
const (
	ParamAccessToken = "access_token"
	ParamAPIUser     = "api_user"
	ParamAPIPassword = "api_password"
	ParamBaseURL     = "base_url"
	ParamLoginURL    = "base_url_login"
)

// Params is the key/value configuration store the client persists its
// session token into.
type Params interface {
	GetParam(key string) (string, bool)
	SetParam(key, value string) error
}

// FetchError is a transport-level failure: a non-2xx status after the
// auth retry, or a network error. Callers that only care about "no
// data" can ignore it; the accompanying Response is always empty.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("forcemanager request failed: %v", e.Err)
	}
	return fmt.Sprintf("forcemanager request failed: HTTP %d", e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client talks to the ForceManager v4 REST API. Authentication uses a
// session token obtained from the login endpoint and sent as
// X-Session-Key on every call; an expired token (401) triggers exactly
// one re-authentication and one retry.
type Client struct {
	cfg        config.ForceManagerConfig
	params     Params
	HTTPClient *http.Client
}

// NewClient creates a new API client on top of the shared parameter
// store.
func NewClient(cfg config.ForceManagerConfig, params Params) *Client {
	return &Client{
		cfg:        cfg,
		params:     params,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) baseURL() string {
	if v, ok := c.params.GetParam(ParamBaseURL); ok && v != "" {
		return strings.TrimRight(v, "/")
	}
	return strings.TrimRight(c.cfg.BaseURL, "/")
}

func (c *Client) loginURL() string {
	if v, ok := c.params.GetParam(ParamLoginURL); ok && v != "" {
		return v
	}
	if c.cfg.LoginURL != "" {
		return c.cfg.LoginURL
	}
	return c.baseURL() + "/login"
}

func (c *Client) credentials() (user, password string) {
	user, _ = c.params.GetParam(ParamAPIUser)
	password, _ = c.params.GetParam(ParamAPIPassword)
	if user == "" {
		user = c.cfg.APIUser
	}
	if password == "" {
		password = c.cfg.APIPassword
	}
	return user, password
}

// Authenticate exchanges the stored credentials for a session token
// and persists it. Missing credentials or a rejected login are logged
// and leave the token untouched; subsequent requests will fail soft.
func (c *Client) Authenticate(ctx context.Context) {
	user, password := c.credentials()
	if user == "" || password == "" {
		log.Println("❌ FM auth: api_user/api_password not configured")
		return
	}

	body, _ := json.Marshal(map[string]string{
		"username": user,
		"password": password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL(), bytes.NewReader(body))
	if err != nil {
		log.Printf("❌ FM auth: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Printf("❌ FM auth: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("❌ FM auth: login rejected with HTTP %d", resp.StatusCode)
		return
	}

	var data struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil || data.Token == "" {
		log.Printf("⚠️ FM auth: no token in login response")
		return
	}

	if err := c.params.SetParam(ParamAccessToken, data.Token); err != nil {
		log.Printf("❌ FM auth: failed to persist token: %v", err)
		return
	}
	log.Println("✅ FM auth: session token obtained")
}

func (c *Client) accessToken(ctx context.Context) string {
	token, _ := c.params.GetParam(ParamAccessToken)
	if token == "" {
		c.Authenticate(ctx)
		token, _ = c.params.GetParam(ParamAccessToken)
	}
	return token
}

// Request performs one API call. The endpoint is relative to the base
// URL and may already carry a query string. On 401 the client
// re-authenticates once and retries once. Any remaining failure is
// normalized to an empty Response plus a *FetchError; callers treat it
// as "no data" and skip the pass.
func (c *Client) Request(ctx context.Context, endpoint, method string, payload interface{}, extraHeaders map[string]string) (*Response, error) {
	url := c.baseURL() + "/" + strings.TrimLeft(endpoint, "/")

	do := func() (*http.Response, error) {
		var body io.Reader
		if payload != nil && method != http.MethodGet {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, err
			}
			body = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "*/*")
		req.Header.Set("X-Session-Key", c.accessToken(ctx))
		for k, v := range extraHeaders {
			req.Header.Set(k, v)
		}
		return c.HTTPClient.Do(req)
	}

	resp, err := do()
	if err != nil {
		log.Printf("❌ FM %s %s: %v", method, url, err)
		return &Response{}, &FetchError{Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		log.Println("⚠️ FM: session expired (401), re-authenticating")
		c.Authenticate(ctx)
		resp, err = do()
		if err != nil {
			log.Printf("❌ FM %s %s (retry): %v", method, url, err)
			return &Response{}, &FetchError{Err: err}
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Response{}, &FetchError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("❌ FM %s %s: HTTP %d", method, url, resp.StatusCode)
		return &Response{}, &FetchError{Status: resp.StatusCode}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return &Response{}, nil
	}

	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Printf("⚠️ FM %s %s: undecodable body: %v", method, url, err)
		return &Response{}, &FetchError{Err: err}
	}
	return &Response{data: data}, nil
}

// HasBulkEndpoint probes whether the deployment supports the given
// bulk endpoint, via a zero-result GET against the same path.
func (c *Client) HasBulkEndpoint(ctx context.Context, endpoint string) bool {
	_, err := c.Request(ctx, endpoint+"?limit=0", http.MethodGet, nil, nil)
	if err != nil {
		log.Printf("⚠️ FM: bulk endpoint %s not available", endpoint)
		return false
	}
	return true
}
