package catalog

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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fyrsmithlabs/projectdeck/internal/config"
	"github.com/fyrsmithlabs/projectdeck/internal/project"
	"github.com/fyrsmithlabs/projectdeck/internal/telemetry"
)

const (
	// ProjectsPath lists every project. No query parameters, no paging.
	ProjectsPath = "/api/projects/all"
	// CreatePath is the project-creation endpoint.
	CreatePath = "/api/projects"

	defaultTimeout = 10 * time.Second
	maxBodySize    = 16 << 20
)

// Fetcher retrieves the raw project collection.
type Fetcher interface {
	FetchProjects(ctx context.Context) ([]project.Project, error)
}

// Config holds client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Token   config.Secret
}

// Client talks to the catalog HTTP API.
type Client struct {
	baseURL string
	token   config.Secret
	client  *http.Client
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// NewClient creates a new catalog client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client: &http.Client{
			Timeout: timeout,
		},
		tracer: otel.Tracer(telemetry.ScopeCatalog),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchProjects retrieves the full project collection in server order.
func (c *Client) FetchProjects(ctx context.Context) (projects []project.Project, err error) {
	const op = "fetch projects"

	ctx, span := c.tracer.Start(ctx, "catalog.FetchProjects",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.url", c.baseURL+ProjectsPath)),
	)
	start := time.Now()
	defer func() {
		FetchDuration.Observe(time.Since(start).Seconds())
		result := "success"
		var fe *FetchError
		if errors.As(err, &fe) {
			result = fe.Kind.String()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			FetchedProjects.Set(float64(len(projects)))
			span.SetAttributes(attribute.Int("catalog.projects", len(projects)))
		}
		FetchTotal.WithLabelValues(result).Inc()
		span.End()
	}()

	req, err := c.newRequest(ctx, http.MethodGet, ProjectsPath, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Op: op, Err: err}
	}

	body, err := c.do(req, op)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(body, &projects); err != nil {
		return nil, &FetchError{Kind: KindDecode, Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if projects == nil {
		// A literal null is not a collection.
		return nil, &FetchError{Kind: KindDecode, Op: op, Err: errors.New("response is not a JSON array")}
	}
	if err := project.ValidateCollection(projects); err != nil {
		return nil, &FetchError{Kind: KindDecode, Op: op, Err: err}
	}

	return projects, nil
}

// CreateProject submits a new project to the creation endpoint.
func (c *Client) CreateProject(ctx context.Context, in project.CreateRequest) (project.Project, error) {
	const op = "create project"

	ctx, span := c.tracer.Start(ctx, "catalog.CreateProject", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	payload, err := json.Marshal(in)
	if err != nil {
		return project.Project{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, CreatePath, bytes.NewReader(payload))
	if err != nil {
		return project.Project{}, &FetchError{Kind: KindNetwork, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, op)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return project.Project{}, err
	}

	var created project.Project
	if err := json.Unmarshal(body, &created); err != nil {
		return project.Project{}, &FetchError{Kind: KindDecode, Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return created, nil
}

// Health checks the server health endpoint.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return "", &FetchError{Kind: KindNetwork, Op: "health", Err: err}
	}
	body, err := c.do(req, "health")
	if err != nil {
		return "", err
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &FetchError{Kind: KindDecode, Op: "health", Err: err}
	}
	return resp.Status, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token.IsSet() {
		req.Header.Set("Authorization", "Bearer "+c.token.Value())
	}
	return req, nil
}

// do executes req and returns the body of a 2xx response.
func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Op: op, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &FetchError{Kind: KindStatus, Op: op, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return body, nil
}
