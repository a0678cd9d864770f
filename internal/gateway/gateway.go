// Package gateway is the client of the remote users service.
//
// Every response is wrapped in a {"info": ...} envelope which the gateway
// unwraps. Single customer lookups fail soft and return nil; listing and
// all mutating calls return their errors to the caller.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custadmin/custadmin/internal/metrics"
	"github.com/custadmin/custadmin/internal/model"
)

const usersPath = "/users"

const (
	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 4 << 10
	// drainLimit bounds how much of an ignored body is read for connection reuse.
	drainLimit = 64 << 10
)

// Operation names used in logs and metrics.
const (
	OpGetCustomer    = "get_customer"
	OpListCustomers  = "list_customers"
	OpCreateCustomer = "create_customer"
	OpUpdateCustomer = "update_customer"
	OpChangePassword = "change_password"
	OpDeleteCustomer = "delete_customer"
)

// Ack is the transport level acknowledgement of a call without payload.
type Ack struct {
	StatusCode int
	Status     string
}

type envelope[T any] struct {
	Info *T `json:"info"`
}

// RequestIDFunc extracts the request id to forward from a context.
type RequestIDFunc func(ctx context.Context) string

// Gateway issues customer requests against the users service.
type Gateway struct {
	baseURL   string
	client    *http.Client
	logger    *slog.Logger
	metrics   metrics.Recorder
	requestID RequestIDFunc
}

// New creates a Gateway for the service rooted at baseURL.
// A nil client gets NewHTTPClient(DefaultTimeout).
func New(baseURL string, client *http.Client, logger *slog.Logger, recorder metrics.Recorder) (*Gateway, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL must have a host")
	}

	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger.With("component", "gateway"),
		metrics: recorder,
	}, nil
}

// SetRequestIDFunc sets where the forwarded X-Request-ID comes from.
// Without one, every outbound request gets a fresh UUID.
func (g *Gateway) SetRequestIDFunc(fn RequestIDFunc) {
	g.requestID = fn
}

// BaseURL returns the users service root.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// GetCustomer fetches one customer. Any failure is logged and reported
// as an absent customer (nil).
func (g *Gateway) GetCustomer(ctx context.Context, id string) *model.Customer {
	var env envelope[model.Customer]
	if _, err := g.do(ctx, OpGetCustomer, http.MethodGet, customerPath(id), nil, &env); err != nil {
		g.metrics.IncGatewaySoftFailure(OpGetCustomer)
		g.logger.Warn("customer lookup failed",
			"user_id", id,
			"error", err,
		)
		return nil
	}
	if env.Info == nil {
		g.metrics.IncGatewaySoftFailure(OpGetCustomer)
		g.logger.Warn("customer lookup failed",
			"user_id", id,
			"error", ErrMissingInfo,
		)
		return nil
	}
	return env.Info
}

// ListCustomers fetches every customer.
func (g *Gateway) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	var env envelope[[]model.Customer]
	if _, err := g.do(ctx, OpListCustomers, http.MethodGet, usersPath, nil, &env); err != nil {
		return nil, err
	}
	if env.Info == nil {
		return nil, fmt.Errorf("%s: %w", OpListCustomers, ErrMissingInfo)
	}
	if *env.Info == nil {
		return []model.Customer{}, nil
	}
	return *env.Info, nil
}

// CreateCustomer signs up a new customer and returns it with its assigned id.
func (g *Gateway) CreateCustomer(ctx context.Context, form model.CustomerForm) (*model.Customer, error) {
	return g.sendCustomer(ctx, OpCreateCustomer, http.MethodPost, usersPath+"/signup", form.Trimmed())
}

// UpdateCustomer replaces the name and email of a customer and returns
// the full updated record.
func (g *Gateway) UpdateCustomer(ctx context.Context, id string, form model.CustomerForm) (*model.Customer, error) {
	return g.sendCustomer(ctx, OpUpdateCustomer, http.MethodPut, customerPath(id), form.Trimmed())
}

// ChangePassword changes the password of the calling account.
func (g *Gateway) ChangePassword(ctx context.Context, oldPassword, newPassword string) (*Ack, error) {
	body := model.PasswordChange{
		OldPassword: strings.TrimSpace(oldPassword),
		NewPassword: strings.TrimSpace(newPassword),
	}
	return g.do(ctx, OpChangePassword, http.MethodPatch, usersPath+"/password", body, nil)
}

// DeleteCustomer removes a customer.
func (g *Gateway) DeleteCustomer(ctx context.Context, id string) (*Ack, error) {
	return g.do(ctx, OpDeleteCustomer, http.MethodDelete, customerPath(id), nil, nil)
}

// Ping checks that the users service answers HTTP at all. Any status
// counts as reachable.
func (g *Gateway) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, g.baseURL+usersPath, nil)
	if err != nil {
		return fmt.Errorf("ping: create request: %w", err)
	}
	setHeaders(req, g.outboundRequestID(ctx), false)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (g *Gateway) sendCustomer(ctx context.Context, op, method, path string, form model.CustomerForm) (*model.Customer, error) {
	var env envelope[model.Customer]
	if _, err := g.do(ctx, op, method, path, form, &env); err != nil {
		return nil, err
	}
	if env.Info == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingInfo)
	}
	return env.Info, nil
}

// do performs one request. out, when non-nil, receives the decoded body.
func (g *Gateway) do(ctx context.Context, op, method, path string, body, out any) (*Ack, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	setHeaders(req, g.outboundRequestID(ctx), body != nil)

	start := time.Now()
	resp, err := g.client.Do(req)
	duration := time.Since(start)
	g.metrics.ObserveGatewayDuration(op, duration)

	if err != nil {
		g.metrics.IncGatewayRequest(op, metrics.OutcomeError)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		g.metrics.IncGatewayRequest(op, metrics.OutcomeError)
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			g.metrics.IncGatewayRequest(op, metrics.OutcomeError)
			return nil, fmt.Errorf("%s: decode response: %w", op, err)
		}
	} else {
		io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
	}

	g.metrics.IncGatewayRequest(op, metrics.OutcomeSuccess)
	g.logger.Debug("users service call",
		"op", op,
		"http_status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
	)

	return &Ack{StatusCode: resp.StatusCode, Status: resp.Status}, nil
}

func (g *Gateway) outboundRequestID(ctx context.Context) string {
	if g.requestID != nil {
		if id := g.requestID(ctx); id != "" {
			return id
		}
	}
	return uuid.New().String()
}

func customerPath(id string) string {
	return usersPath + "/" + url.PathEscape(id)
}
