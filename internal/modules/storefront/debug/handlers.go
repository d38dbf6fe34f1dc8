// Package debug serves the debug observer over HTTP.
// These routes use WithRawResponse() so tooling reads the payload without the APIResponse envelope.
package debug

import (
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/dispatch"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/observer"
	"github.com/gaborage/go-bricks/logger"
	"github.com/gaborage/go-bricks/server"
)

// View is the subset of *observer.Observer read by the debug routes.
type View interface {
	Flush()
	Entries() []domain.DataLayerEntry
	Lines() []observer.Line
	Count() int
	Clear()
}

// QueueStats reports the outbound queue counters.
type QueueStats interface {
	Stats() dispatch.Stats
}

// LogSize reports the retained and lifetime length of the channel-1 log.
type LogSize interface {
	Len() int
	Total() int
}

type DataLayerRequest struct {
	Limit int `query:"limit"`
}

type ClearRequest struct{}

type StatsRequest struct{}

type DataLayerResponse struct {
	Count   int                     `json:"count"`
	Lines   []observer.Line         `json:"lines"`
	Entries []domain.DataLayerEntry `json:"entries"`
}

type StatsResponse struct {
	Queue          dispatch.Stats `json:"queue"`
	ObserverCount  int            `json:"observerCount"`
	DataLayerLen   int            `json:"dataLayerLength"`
	DataLayerTotal int            `json:"dataLayerTotal"`
}

type Handler struct {
	view   View
	queue  QueueStats
	log    LogSize
	logger logger.Logger
}

func NewHandler(view View, queue QueueStats, log LogSize, l logger.Logger) *Handler {
	return &Handler{
		view:   view,
		queue:  queue,
		log:    log,
		logger: l,
	}
}

// GetDataLayer returns the observer's rendered lines (newest first) and recorded entries.
// A positive limit keeps only the newest lines and entries.
func (h *Handler) GetDataLayer(req DataLayerRequest, _ server.HandlerContext) (*DataLayerResponse, server.IAPIError) {
	if req.Limit < 0 {
		return nil, server.NewBadRequestError("limit must not be negative")
	}

	h.view.Flush()
	lines := h.view.Lines()
	entries := h.view.Entries()
	if req.Limit > 0 {
		if len(lines) > req.Limit {
			lines = lines[:req.Limit]
		}
		if len(entries) > req.Limit {
			entries = entries[len(entries)-req.Limit:]
		}
	}

	return &DataLayerResponse{
		Count:   h.view.Count(),
		Lines:   lines,
		Entries: entries,
	}, nil
}

// ClearDataLayer empties the observer view. The data layer keeps its entries until
// retention or session expiry releases them.
func (h *Handler) ClearDataLayer(_ ClearRequest, _ server.HandlerContext) (server.NoContentResult, server.IAPIError) {
	cleared := h.view.Count()
	h.view.Clear()
	h.logger.Info().Int("cleared", cleared).Msg("Debug observer cleared")
	return server.NoContent(), nil
}

func (h *Handler) GetStats(_ StatsRequest, _ server.HandlerContext) (*StatsResponse, server.IAPIError) {
	return &StatsResponse{
		Queue:          h.queue.Stats(),
		ObserverCount:  h.view.Count(),
		DataLayerLen:   h.log.Len(),
		DataLayerTotal: h.log.Total(),
	}, nil
}

// RegisterRoutes registers the debug routes with WithRawResponse().
func (h *Handler) RegisterRoutes(hr *server.HandlerRegistry, r server.RouteRegistrar) {
	server.GET(hr, r, "/debug/datalayer", h.GetDataLayer,
		server.WithRawResponse(),
		server.WithTags("debug"),
	)
	server.DELETE(hr, r, "/debug/datalayer", h.ClearDataLayer,
		server.WithRawResponse(),
		server.WithTags("debug"),
	)
	server.GET(hr, r, "/debug/datalayer/stats", h.GetStats,
		server.WithRawResponse(),
		server.WithTags("debug"),
	)
}
