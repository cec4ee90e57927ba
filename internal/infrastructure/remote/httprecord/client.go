package httprecord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mirrordesk/mirrordesk/internal/domain/model/deal"
	"github.com/mirrordesk/mirrordesk/internal/domain/model/record"
	"github.com/mirrordesk/mirrordesk/internal/domain/remote"
)

// wireError is the error body the record service returns:
// a machine-readable code and a human-readable message.
type wireError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Detail  map[string]any `json:"detail,omitempty"`
}

// Client talks JSON to one resource collection of the remote record
// service. It implements remote.RecordService[T].
type Client[T record.Record[T]] struct {
	baseURL  string
	resource string
	http     *http.Client
}

// Option configures a client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	timeout    time.Duration
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.httpClient = h }
}

// WithTimeout sets the per-request timeout. Ignored when a custom
// HTTP client is supplied.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// NewClient creates a client for one resource path, e.g. "deals".
func NewClient[T record.Record[T]](baseURL, resource string, opts ...Option) *Client[T] {
	o := options{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	h := o.httpClient
	if h == nil {
		h = &http.Client{Timeout: o.timeout}
	}
	return &Client[T]{
		baseURL:  strings.TrimRight(baseURL, "/"),
		resource: resource,
		http:     h,
	}
}

// List fetches the collection page matching the query. The client-side
// Expression is not sent to the server.
func (c *Client[T]) List(ctx context.Context, q remote.Query) ([]T, error) {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(q.PageSize))
	}
	for k, v := range q.Filter {
		values.Set(k, v)
	}

	path := "/" + c.resource
	if len(values) > 0 {
		path += "?" + values.Encode()
	}

	var out []T
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	if err := c.do(ctx, http.MethodGet, "/"+c.resource+"/"+url.PathEscape(id), nil, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (c *Client[T]) Create(ctx context.Context, payload T) (T, error) {
	var out T
	if err := c.do(ctx, http.MethodPost, "/"+c.resource, payload, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (c *Client[T]) Update(ctx context.Context, id string, patch record.Patch) (T, error) {
	var out T
	if err := c.do(ctx, http.MethodPatch, "/"+c.resource+"/"+url.PathEscape(id), patch, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (c *Client[T]) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/"+c.resource+"/"+url.PathEscape(id), nil, nil)
}

// do issues one request and decodes the reply. Failures come back as
// *remote.Failure: transport problems map to the network category,
// HTTP rejections to a category derived from the status code.
func (c *Client[T]) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return remote.NewFailure(remote.CategoryValidation, "encode request: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return remote.NewFailure(remote.CategoryNetwork, "build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return remote.NewFailure(remote.CategoryNetwork, "%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failureFromResponse(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return remote.NewFailure(remote.CategoryNetwork, "decode response: %v", err)
	}
	return nil
}

func failureFromResponse(resp *http.Response) *remote.Failure {
	var we wireError
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	_ = json.Unmarshal(data, &we)

	message := we.Message
	if message == "" {
		message = fmt.Sprintf("%s (status %d)", http.StatusText(resp.StatusCode), resp.StatusCode)
	}

	f := remote.NewFailure(categoryForStatus(resp.StatusCode), "%s", message)
	if we.Detail != nil {
		f = f.WithDetail(we.Detail)
	}
	return f
}

func categoryForStatus(status int) remote.Category {
	switch {
	case status == http.StatusNotFound:
		return remote.CategoryNotFound
	case status == http.StatusConflict || status == http.StatusPreconditionFailed:
		return remote.CategoryConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return remote.CategoryValidation
	default:
		return remote.CategoryNetwork
	}
}

// DealClient adds the pipeline-specific stage move endpoint on top of
// the plain record client. It implements remote.DealService.
type DealClient struct {
	*Client[*deal.Deal]
}

// NewDealClient creates a client for the deals collection.
func NewDealClient(baseURL string, opts ...Option) *DealClient {
	return &DealClient{Client: NewClient[*deal.Deal](baseURL, "deals", opts...)}
}

// Move reassigns a deal's stage via POST /deals/{id}/move.
func (c *DealClient) Move(ctx context.Context, dealID, stageID string) (*deal.Deal, error) {
	var out *deal.Deal
	path := "/" + c.resource + "/" + url.PathEscape(dealID) + "/move"
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"stage_id": stageID}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
