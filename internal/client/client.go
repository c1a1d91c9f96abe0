package client

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

	"github.com/2beens/trainingapp/internal/catalog"
	"github.com/2beens/trainingapp/internal/telemetry/tracing"
	"github.com/2beens/trainingapp/internal/training"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultBaseURL = "http://localhost:3001"

	saveTrainingPath = "/api/save-training"
	historyPath      = "/api/history"
	complexesPath    = "/api/complexes"

	defaultTimeout = 15 * time.Second
)

var ErrUnexpectedStatus = errors.New("unexpected response status")

// StatusError carries the error body the persistence service sends with a
// non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("status %d", e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

type saveTrainingRequest struct {
	TrainingData training.Summary `json:"trainingData"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Client talks to the persistence service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. An empty baseURL falls back to
// DefaultBaseURL, a nil httpClient to one with an otelhttp transport.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   defaultTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SaveSession sends one finished session to the persistence service.
func (c *Client) SaveSession(ctx context.Context, summary training.Summary) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "client.saveSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("complex", summary.Complex))

	reqBody, err := json.Marshal(saveTrainingRequest{TrainingData: summary})
	if err != nil {
		return fmt.Errorf("marshal training data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+saveTrainingPath, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.do(req); err != nil {
		return err
	}

	log.Debugf("client: session [%s] from %s saved", summary.Complex, summary.Date)
	return nil
}

// FetchHistory returns the stored sessions in insertion order.
func (c *Client) FetchHistory(ctx context.Context) (summaries []training.Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "client.fetchHistory")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+historyPath, nil)
	if err != nil {
		return nil, err
	}

	respBytes, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(respBytes, &summaries); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	span.SetAttributes(attribute.Int("sessions", len(summaries)))
	return summaries, nil
}

// FetchCatalog loads the exercise catalog from the service. A malformed
// response is reported as a *catalog.CatalogLoadError.
func (c *Client) FetchCatalog(ctx context.Context) (_ *catalog.Catalog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "client.fetchCatalog")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+complexesPath, nil)
	if err != nil {
		return nil, &catalog.CatalogLoadError{Reason: "build request", Err: err}
	}

	respBytes, err := c.do(req)
	if err != nil {
		return nil, &catalog.CatalogLoadError{Reason: "fetch complexes", Err: err}
	}

	return catalog.Load(bytes.NewReader(respBytes))
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errResp errorResponse
		if json.Unmarshal(respBytes, &errResp) == nil {
			statusErr.Message = errResp.Error
			statusErr.Details = errResp.Details
		}
		return nil, statusErr
	}

	return respBytes, nil
}
