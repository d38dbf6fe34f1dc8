package debug

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/datalayer"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/dispatch"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/observer"
	"github.com/gaborage/go-bricks/config"
	"github.com/gaborage/go-bricks/logger"
	"github.com/gaborage/go-bricks/server"
	"github.com/labstack/echo/v5"
)

type fixedStats struct {
	stats dispatch.Stats
}

func (f fixedStats) Stats() dispatch.Stats {
	return f.stats
}

func newTestContext() server.HandlerContext {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return server.HandlerContext{
		Echo: e.NewContext(req, rec),
		Config: &config.Config{
			App: config.AppConfig{Name: "test", Version: "1.0.0", Env: "test", Debug: true},
		},
	}
}

func newTestHandler(t *testing.T, events ...string) (*Handler, *observer.Observer) {
	t.Helper()
	log := datalayer.New()
	obs := observer.New(log, "en-IN")
	t.Cleanup(obs.Close)

	at := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	for i, event := range events {
		log.Push(domain.DataLayerEntry{ID: event, Event: event, EventInfo: domain.Body{}, PushedAt: at.Add(time.Duration(i) * time.Second)})
	}

	stats := fixedStats{stats: dispatch.Stats{Offered: 3, Delivered: 2, Dropped: 1}}
	return NewHandler(obs, stats, log, logger.New("info", false)), obs
}

func TestGetDataLayer(t *testing.T) {
	tests := []struct {
		name        string
		limit       int
		wantLines   int
		wantFirst   string
		wantErrCode string
	}{
		{name: "all entries", limit: 0, wantLines: 3, wantFirst: "order:placed"},
		{name: "limited", limit: 2, wantLines: 2, wantFirst: "order:placed"},
		{name: "negative limit", limit: -1, wantErrCode: "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t, "page:view", "cart:add", "order:placed")

			response, apiErr := handler.GetDataLayer(DataLayerRequest{Limit: tt.limit}, newTestContext())

			if tt.wantErrCode != "" {
				if apiErr == nil || apiErr.ErrorCode() != tt.wantErrCode {
					t.Fatalf("GetDataLayer() error = %v, want %s", apiErr, tt.wantErrCode)
				}
				return
			}
			if apiErr != nil {
				t.Fatalf("GetDataLayer() error = %v", apiErr)
			}
			if response.Count != 3 {
				t.Errorf("GetDataLayer() count = %d, want 3", response.Count)
			}
			if len(response.Lines) != tt.wantLines || len(response.Entries) != tt.wantLines {
				t.Fatalf("GetDataLayer() lines/entries = %d/%d, want %d", len(response.Lines), len(response.Entries), tt.wantLines)
			}
			if response.Lines[0].EntryID != tt.wantFirst {
				t.Errorf("GetDataLayer() newest line = %q, want %q", response.Lines[0].EntryID, tt.wantFirst)
			}
			if response.Entries[len(response.Entries)-1].Event != "order:placed" {
				t.Errorf("GetDataLayer() entries should end with the newest entry")
			}
		})
	}
}

func TestClearDataLayer(t *testing.T) {
	handler, obs := newTestHandler(t, "page:view", "cart:add")

	if _, apiErr := handler.ClearDataLayer(ClearRequest{}, newTestContext()); apiErr != nil {
		t.Fatalf("ClearDataLayer() error = %v", apiErr)
	}
	if obs.Count() != 0 {
		t.Errorf("observer count after clear = %d, want 0", obs.Count())
	}

	stats, apiErr := handler.GetStats(StatsRequest{}, newTestContext())
	if apiErr != nil {
		t.Fatalf("GetStats() error = %v", apiErr)
	}
	if stats.DataLayerLen != 2 {
		t.Errorf("data layer length = %d, want 2 (clear must not touch the log)", stats.DataLayerLen)
	}
	if stats.DataLayerTotal != 2 {
		t.Errorf("data layer total = %d, want 2", stats.DataLayerTotal)
	}
	if stats.Queue.Offered != 3 || stats.Queue.Dropped != 1 {
		t.Errorf("queue stats = %+v", stats.Queue)
	}
}
