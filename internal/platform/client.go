package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const commandEndpointPattern = "%s/v1/commands"

// Sentinel errors for platform-agent operations
var (
	// ErrPlatformUnavailable indicates the platform agent is unreachable
	// or returned an unexpected error
	ErrPlatformUnavailable = errors.New("data platform unavailable")

	// ErrClientInternal indicates an internal error in the client
	ErrClientInternal = errors.New("platform client internal error")
)

// command is the wire form of one typed platform request. The agent
// executes it against the warehouse; identifiers are validated before
// they are ever placed in a command.
type command struct {
	Type        string `json:"type"`
	Source      string `json:"source,omitempty"`
	Destination string `json:"destination,omitempty"`
	IncludeData bool   `json:"include_data,omitempty"`
	Role        string `json:"role,omitempty"`
	Grantee     string `json:"grantee,omitempty"`
	Privilege   string `json:"privilege,omitempty"`
	ObjectKind  string `json:"object_kind,omitempty"`
	ObjectName  string `json:"object_name,omitempty"`
}

// agentError is an error response from the platform agent.
type agentError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// HTTPClient implements DataPlatform against the platform agent's REST
// command endpoint.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ DataPlatform = (*HTTPClient)(nil)

// NewClient creates a new platform-agent HTTP client. timeout bounds
// role and grant commands; copy commands are bounded by the caller's
// context instead, since large copies may legitimately run for minutes.
func NewClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *HTTPClient) CopySchema(ctx context.Context, src, dst string, includeData bool) error {
	if err := ValidateQualifiedName(src); err != nil {
		return fmt.Errorf("%w: %v", ErrClientInternal, err)
	}
	if err := ValidateQualifiedName(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrClientInternal, err)
	}
	return c.execute(ctx, command{
		Type:        "COPY_SCHEMA",
		Source:      src,
		Destination: dst,
		IncludeData: includeData,
	}, true)
}

func (c *HTTPClient) CopyDatabase(ctx context.Context, src, dst string, includeData bool) error {
	if err := ValidateIdentifier(src); err != nil {
		return fmt.Errorf("%w: %v", ErrClientInternal, err)
	}
	if err := ValidateIdentifier(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrClientInternal, err)
	}
	return c.execute(ctx, command{
		Type:        "COPY_DATABASE",
		Source:      src,
		Destination: dst,
		IncludeData: includeData,
	}, true)
}

func (c *HTTPClient) CreateAccessRole(ctx context.Context, name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return fmt.Errorf("%w: %v", ErrClientInternal, err)
	}
	return c.execute(ctx, command{
		Type: "CREATE_ROLE",
		Role: name,
	}, false)
}

func (c *HTTPClient) Grant(ctx context.Context, grant Grant) error {
	if err := ValidateIdentifier(grant.Grantee); err != nil {
		return fmt.Errorf("%w: %v", ErrClientInternal, err)
	}
	if err := ValidateQualifiedName(grant.On.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrClientInternal, err)
	}
	return c.execute(ctx, command{
		Type:       "GRANT",
		Grantee:    grant.Grantee,
		Privilege:  string(grant.Privilege),
		ObjectKind: string(grant.On.Kind),
		ObjectName: grant.On.Name,
	}, false)
}

func (c *HTTPClient) Drop(ctx context.Context, kind ObjectKind, name string) error {
	if err := ValidateQualifiedName(name); err != nil {
		return fmt.Errorf("%w: %v", ErrClientInternal, err)
	}
	return c.execute(ctx, command{
		Type:       "DROP",
		ObjectKind: string(kind),
		ObjectName: name,
	}, false)
}

// execute POSTs one command. When unbounded is set the http.Client
// timeout is bypassed so only ctx bounds the call.
func (c *HTTPClient) execute(ctx context.Context, cmd command, unbounded bool) error {
	url := fmt.Sprintf(commandEndpointPattern, c.baseURL)

	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrClientInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrClientInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.httpClient
	if unbounded {
		client = &http.Client{Transport: c.httpClient.Transport}
	}
	resp, err := client.Do(req)
	if err != nil {
		// Surface context errors unchanged so callers can classify
		// timeouts.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	return handleCommandResponse(resp, cmd)
}

func handleCommandResponse(resp *http.Response, cmd command) error {
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrObjectNotFound, cmd.Type, cmd.ObjectName)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrObjectExists, cmd.Destination)
	}

	var agentErr agentError
	if err := json.Unmarshal(body, &agentErr); err == nil && agentErr.Message != "" {
		return fmt.Errorf("%w: %s", ErrPlatformUnavailable, agentErr.Message)
	}
	return fmt.Errorf("%w: status %d: %s", ErrPlatformUnavailable, resp.StatusCode, string(body))
}
