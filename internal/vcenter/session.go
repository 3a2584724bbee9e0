// Package vcenter implements the vSphere Automation API session lifecycle:
// acquire a token, issue authenticated queries, invalidate the token.
package vcenter

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const sessionIDHeader = "vmware-api-session-id"

// Config holds the connection parameters for one check invocation.
type Config struct {
	BaseURL  string
	User     string
	Password string
	CACert   string // path to a CA bundle; empty uses the system pool
	Timeout  time.Duration
	Debug    bool
}

// Session is an authenticated vSphere Automation API session. The auth token
// is set exactly once during NewSession and never refreshed. After Destroy
// the session rejects all further requests.
type Session struct {
	baseURL    string
	debug      bool
	httpClient *http.Client
	authToken  string
	destroyed  bool
}

// NewSession authenticates against POST {BaseURL}/api/session with basic
// auth and stores the returned token. Transport failures return *ConnError;
// any status outside 200/201 returns *AuthError.
func NewSession(cfg Config) (*Session, error) {
	client, err := newHTTPClient(cfg)
	if err != nil {
		return nil, &ConnError{Err: err}
	}

	s := &Session{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		debug:      cfg.Debug,
		httpClient: client,
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/api/session", nil)
	if err != nil {
		return nil, &ConnError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(cfg.User, cfg.Password)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &ConnError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnError{Err: err}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	// The API returns the token as a quoted JSON string.
	s.authToken = strings.Trim(strings.TrimSpace(string(body)), `"`)
	return s, nil
}

// Destroy invalidates the session token via DELETE {BaseURL}/api/session.
// The session must not be used afterwards.
func (s *Session) Destroy() error {
	if s.destroyed {
		return errors.New("session already destroyed")
	}

	req, err := http.NewRequest(http.MethodDelete, s.baseURL+"/api/session", nil)
	if err != nil {
		return &ConnError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(sessionIDHeader, s.authToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &ConnError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnError{Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
	default:
		return &TeardownError{Status: resp.StatusCode, Body: string(body)}
	}

	s.destroyed = true
	return nil
}

// Query issues an authenticated request against {BaseURL}{path} and decodes
// the JSON response into out. Caller headers are merged over the default
// form-encoded content type; the session token header always wins. Statuses
// 400, 401, 403, 500 and 503 return *APIError; everything else is decoded
// without further status checking.
func (s *Session) Query(method, path string, headers map[string]string, out any) error {
	if s.destroyed {
		return errors.New("session already destroyed")
	}

	req, err := http.NewRequest(method, s.baseURL+path, nil)
	if err != nil {
		return &ConnError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set(sessionIDHeader, s.authToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &ConnError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnError{Err: err}
	}

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusInternalServerError, http.StatusServiceUnavailable:
		return &APIError{Path: path, Status: resp.StatusCode, Body: string(body)}
	}

	if s.debug {
		dumpResponse(body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

// dumpResponse pretty-prints the raw API response to stderr. Stdout is
// reserved for the single plugin output line.
func dumpResponse(body []byte) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Fprintln(os.Stderr, string(body))
		return
	}
	pretty, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		fmt.Fprintln(os.Stderr, string(body))
		return
	}
	fmt.Fprintln(os.Stderr, string(pretty))
}

func newHTTPClient(cfg Config) (*http.Client, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	if cfg.CACert != "" {
		pem, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("read CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.CACert)
		}
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: pool},
		}
	}

	return client, nil
}
