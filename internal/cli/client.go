package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// PlayerTokenHeader carries the player token on session-scoped requests
const PlayerTokenHeader = "X-Player-Token"

// Client is an HTTP client for the API
type Client struct {
	baseURL     string
	token       string
	playerToken string
	language    string
	httpClient  *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, token, playerToken, language string) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		token:       token,
		playerToken: playerToken,
		language:    language,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken updates the client's account token
func (c *Client) SetToken(token string) {
	c.token = token
}

// SetPlayerToken updates the client's player token
func (c *Client) SetPlayerToken(token string) {
	c.playerToken = token
}

// APIError is an error answered by the server
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (HTTP %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

type errorBody struct {
	Error      string          `json:"error"`
	StatusCode int             `json:"statusCode"`
	Message    json.RawMessage `json:"message"`
}

// message flattens the message field, which is either a string or a list
func (b errorBody) message() string {
	var one string
	if err := json.Unmarshal(b.Message, &one); err == nil {
		return one
	}
	var many []string
	if err := json.Unmarshal(b.Message, &many); err == nil {
		return strings.Join(many, "; ")
	}
	return string(b.Message)
}

func (c *Client) newRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.playerToken != "" {
		req.Header.Set(PlayerTokenHeader, c.playerToken)
	}
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}
	return req, nil
}

// Do performs an HTTP request and decodes the data envelope into result
func (c *Client) Do(method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := c.newRequest(method, path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp errorBody
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return &APIError{Status: resp.StatusCode, Code: errResp.Error, Message: errResp.message()}
		}
		return &APIError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode), Message: strings.TrimSpace(string(respBody))}
	}

	if result == nil || len(respBody) == 0 {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Get performs a GET request
func (c *Client) Get(path string, result any) error {
	return c.Do(http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(path string, body, result any) error {
	return c.Do(http.MethodPost, path, body, result)
}

// Patch performs a PATCH request
func (c *Client) Patch(path string, body, result any) error {
	return c.Do(http.MethodPatch, path, body, result)
}

// Delete performs a DELETE request
func (c *Client) Delete(path string, result any) error {
	return c.Do(http.MethodDelete, path, nil, result)
}
