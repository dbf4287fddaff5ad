// Package remote provides a client for the supervised server's management API,
// the request/response control surface used to query and stop the server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/serverwarden/serverwarden/config"
)

// Client is a client for the server management API. Every operation is a
// plain request/response call; the client holds no lifecycle state.
type Client struct {
	apiURL   string
	username string
	password string
	client   *http.Client
}

// New creates a new management API client using the provided configuration.
func New(cfg config.Config) *Client {
	return &Client{
		apiURL:   cfg.APIURL,
		username: cfg.Username,
		password: cfg.Password,
		client:   &http.Client{},
	}
}

// Status returns the server's identity block. A failed call means the server
// (or its management endpoint) is not reachable.
func (c *Client) Status(ctx context.Context) (ServerStatus, error) {
	var response StatusResponse
	if err := c.getJSON(ctx, "/api/v1/server/status", &response); err != nil {
		return ServerStatus{}, err
	}

	return response.Data, nil
}

// Players returns the list of currently connected players.
func (c *Client) Players(ctx context.Context) ([]Player, error) {
	var response PlayersResponse
	if err := c.getJSON(ctx, "/api/v1/server/players", &response); err != nil {
		return nil, err
	}

	return response.Data, nil
}

// Metrics returns runtime metrics of the supervised server.
func (c *Client) Metrics(ctx context.Context) (ServerMetrics, error) {
	var response MetricsResponse
	if err := c.getJSON(ctx, "/api/v1/server/metrics", &response); err != nil {
		return ServerMetrics{}, err
	}

	return response.Data, nil
}

// SaveWorld asks the server to persist its world state and waits for the API
// to acknowledge the request.
func (c *Client) SaveWorld(ctx context.Context) error {
	if err := c.postJSON(ctx, "/api/v1/server/action/save", nil); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	return nil
}

// RequestShutdown asks the server to stop after the given grace delay,
// broadcasting message to connected players.
func (c *Client) RequestShutdown(ctx context.Context, delaySeconds int, message string) error {
	payload := ShutdownPayload{
		DelaySeconds: delaySeconds,
		Message:      message,
	}
	if err := c.postJSON(ctx, "/api/v1/server/action/shutdown", payload); err != nil {
		return fmt.Errorf("%w: %v", ErrShutdownRequestFailed, err)
	}

	return nil
}

// IsUp reports whether the server answers its status endpoint. It is the
// liveness probe: any failure, transport or auth, counts as down.
func (c *Client) IsUp(ctx context.Context) bool {
	_, err := c.Status(ctx)
	return err == nil
}

// ServerName returns the display name from a successful status call.
func (c *Client) ServerName(ctx context.Context) (string, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return "", err
	}

	return status.Name, nil
}

// PlayerCount returns the number of currently connected players.
func (c *Client) PlayerCount(ctx context.Context) (int, error) {
	players, err := c.Players(ctx)
	if err != nil {
		return 0, err
	}

	return len(players), nil
}

// getJSON performs an authenticated GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	bearer, err := c.getBearer(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthorizationFailed, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return err
	}
	request.Header.Add("Authorization", bearer)

	response, err := c.client.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHTTPRequestFailed, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToReadBody, err)
	}

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s from %s", ErrUnexpectedStatus, response.Status, path)
	}

	return json.Unmarshal(body, out)
}

// postJSON performs an authenticated POST with an optional JSON body.
func (c *Client) postJSON(ctx context.Context, path string, payload any) error {
	bearer, err := c.getBearer(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthorizationFailed, err)
	}

	var body io.Reader
	if payload != nil {
		jsonData, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return marshalErr
		}
		body = bytes.NewBuffer(jsonData)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, body)
	if err != nil {
		return err
	}
	request.Header.Add("Authorization", bearer)
	if payload != nil {
		request.Header.Add("Content-Type", "application/json")
	}

	response, err := c.client.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHTTPRequestFailed, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s from %s", ErrUnexpectedStatus, response.Status, path)
	}

	return nil
}

// getBearer authenticates with the management API and returns a bearer token
// to be used for authorized requests.
func (c *Client) getBearer(ctx context.Context) (string, error) {
	loginBody := LoginPayload{
		Username: c.username,
		Password: c.password,
	}

	jsonData, err := json.Marshal(loginBody)
	if err != nil {
		return "", err
	}

	request, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apiURL+"/api/v1/auth/login", bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return "", err
	}
	request.Header.Add("Content-Type", "application/json")

	resp, err := c.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTTPRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToReadBody, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	var response LoginResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}

	return fmt.Sprintf("Bearer %s", response.Data.Token), nil
}
