package remoteapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout = 10 * time.Second
	graphqlPath    = "/graphql"
	maxErrorBody   = 4096
)

// Client talks to the remote GraphQL API. Calls are never retried.
type Client struct {
	http *resty.Client
}

// HTTPError is a non-2xx answer from the remote endpoint.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("remoteapi: http %d: %s", e.StatusCode, msg)
}

// RemoteError is a business error reported by the remote API. Message is the
// remote text verbatim.
type RemoteError struct {
	Operation string
	Message   string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// ErrMissingCredentials is returned when a call needs the caller's session but
// the context carries none.
var ErrMissingCredentials = errors.New("remoteapi: missing credentials")

func New(baseURL string) (*Client, error) {
	return NewWithTimeout(baseURL, defaultTimeout)
}

func NewWithTimeout(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("remoteapi: missing base url")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.New("remoteapi: invalid base url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("remoteapi: invalid base url scheme")
	}
	if u.Host == "" {
		return nil, errors.New("remoteapi: invalid base url host")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if err := validateOperations(operations); err != nil {
		return nil, err
	}

	hc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: hc}, nil
}

type gqlRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

func (c *Client) do(ctx context.Context, op string, vars map[string]any, out any) error {
	query, ok := operations[op]
	if !ok {
		return fmt.Errorf("remoteapi: unknown operation %s", op)
	}

	req := c.http.R().
		SetContext(ctx).
		SetBody(gqlRequest{OperationName: op, Query: query, Variables: vars})
	if cred, ok := credentialsFrom(ctx); ok {
		if cred.Authorization != "" {
			req.SetHeader("Authorization", cred.Authorization)
		}
		if cred.Session != "" {
			req.SetCookie(&http.Cookie{Name: SessionCookieName, Value: cred.Session})
		}
	}

	resp, err := req.Post(graphqlPath)
	if err != nil {
		return fmt.Errorf("remoteapi: %s: %w", op, err)
	}
	body := resp.Body()
	if resp.StatusCode()/100 != 2 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &HTTPError{StatusCode: resp.StatusCode(), Message: string(body)}
	}

	var env gqlResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("remoteapi: %s: decode response: %w", op, err)
	}
	if len(env.Errors) > 0 {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			if m := strings.TrimSpace(e.Message); m != "" {
				msgs = append(msgs, m)
			}
		}
		msg := strings.Join(msgs, "; ")
		if msg == "" {
			msg = op + " failed"
		}
		return &RemoteError{Operation: op, Message: msg}
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("remoteapi: %s: empty data", op)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("remoteapi: %s: decode data: %w", op, err)
	}
	return nil
}
