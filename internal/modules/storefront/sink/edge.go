package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaborage/go-bricks-storefront/internal/modules/shared/secrets"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks/logger"
)

var tracer = otel.Tracer("github.com/gaborage/go-bricks-storefront/internal/modules/storefront/sink")

const interactPath = "/ee/v2/interact"

// StatusError is returned when the collector answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("edge collector returned status %d: %s", e.StatusCode, e.Body)
}

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// EdgeSink posts submissions to the edge collector's interact endpoint.
type EdgeSink struct {
	endpoint    string
	client      HTTPDoer
	credentials secrets.CredentialSource
	logger      logger.Logger
}

func NewEdgeSink(endpoint string, client HTTPDoer, credentials secrets.CredentialSource, log logger.Logger) *EdgeSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &EdgeSink{
		endpoint:    strings.TrimRight(endpoint, "/"),
		client:      client,
		credentials: credentials,
		logger:      log,
	}
}

func (s *EdgeSink) Name() string { return "edge" }

type interactRequest struct {
	Events []domain.Submission `json:"events"`
}

func (s *EdgeSink) Submit(ctx context.Context, sub domain.Submission) (err error) {
	ctx, span := tracer.Start(ctx, "edge.interact",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("telemetry.event_type", string(sub.XDM.EventType))),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	creds, err := s.credentials.EdgeCredentials(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve edge credentials: %w", err)
	}

	body, err := json.Marshal(interactRequest{Events: []domain.Submission{sub}})
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	target := s.endpoint + interactPath + "?configId=" + url.QueryEscape(creds.DatastreamID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", creds.APIKey)
	if creds.OrgID != "" {
		req.Header.Set("x-gw-ims-org-id", creds.OrgID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("edge request failed: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
