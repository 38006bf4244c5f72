package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"
)

// serverConnector starts an httptest server on loopback and returns a
// connector whose host reports that server's port.
func serverConnector(t *testing.T, handler http.Handler) *Connector {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse server port: %v", err)
	}
	c := NewConnector(&fakeHost{startFn: func(ctx context.Context) (int, error) { return port, nil }})
	if _, err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	return c
}

func TestEndpointHelpers_RoundTrip(t *testing.T) {
	t.Parallel()

	var gotHeatmapQuery url.Values
	var gotCorrelationQuery url.Values
	var gotImportBody map[string]string
	var gotJSONBody map[string]string
	var gotUserAgent, gotRequestID string

	c := serverConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/status":
			_, _ = io.WriteString(w, `{"db_initialized":true,"available_metrics":["sleep_duration","hrv"],"min_date":"2020-01-01","max_date":null,"counts":{"nights":1825}}`)
		case "/import/fit-folder":
			_ = json.NewDecoder(r.Body).Decode(&gotImportBody)
			_ = json.NewEncoder(w).Encode(ImportResponse{Success: true, Message: "Imported"})
		case "/import/json-folder":
			_ = json.NewDecoder(r.Body).Decode(&gotJSONBody)
			_ = json.NewEncoder(w).Encode(ImportResponse{Success: true})
		case "/metrics/heatmap":
			gotHeatmapQuery = r.URL.Query()
			_, _ = io.WriteString(w, `[{"date":"2024-01-02","value":3.5},{"date":"2024-01-03","value":null}]`)
		case "/metrics/correlation":
			gotCorrelationQuery = r.URL.Query()
			_, _ = io.WriteString(w, `{"x_values":[1,2],"y_values":[2,4],"dates":["2024-01-01","2024-01-02"],"stats":{"n":2}}`)
		case "/settings/data-root":
			_, _ = io.WriteString(w, `{"success":true,"message":"Data root updated"}`)
		default:
			http.NotFound(w, r)
		}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	status, err := FetchStatus(ctx, c)
	if err != nil {
		t.Fatalf("FetchStatus returned error: %v", err)
	}
	if !status.DBInitialized || !status.HasMetric("hrv") || status.Counts["nights"] != 1825 {
		t.Fatalf("FetchStatus payload = %#v", status)
	}
	minDate, maxDate := status.DateRange()
	if minDate.Year() != 2020 || !maxDate.IsZero() {
		t.Fatalf("DateRange = %v, %v; want 2020 and zero", minDate, maxDate)
	}

	imported, err := ImportFitFolder(ctx, c, "/data/fit")
	if err != nil {
		t.Fatalf("ImportFitFolder returned error: %v", err)
	}
	if !imported.Success || gotImportBody["folder_path"] != "/data/fit" {
		t.Fatalf("ImportFitFolder = %#v body=%v", imported, gotImportBody)
	}

	if _, err := ImportJSONFolder(ctx, c, "/data/json", ""); err != nil {
		t.Fatalf("ImportJSONFolder returned error: %v", err)
	}
	if gotJSONBody["data_type"] != JSONSleep {
		t.Fatalf("json import data_type = %q, want %q", gotJSONBody["data_type"], JSONSleep)
	}

	points, err := FetchHeatmap(ctx, c, MetricQuery{Metric: "sleep", StartDate: "2024-01-01"})
	if err != nil {
		t.Fatalf("FetchHeatmap returned error: %v", err)
	}
	if len(points) != 2 || points[0].Value == nil || *points[0].Value != 3.5 || points[1].Value != nil {
		t.Fatalf("FetchHeatmap points = %#v", points)
	}
	if gotHeatmapQuery.Get("metric") != "sleep" ||
		gotHeatmapQuery.Get("start_date") != "2024-01-01" ||
		gotHeatmapQuery.Has("end_date") {
		t.Fatalf("heatmap query = %v", gotHeatmapQuery)
	}

	corr, err := FetchCorrelation(ctx, c, CorrelationQuery{XMetric: "hrv", YMetric: "stress", LagDays: 1})
	if err != nil {
		t.Fatalf("FetchCorrelation returned error: %v", err)
	}
	if len(corr.XValues) != 2 || corr.Stats["n"] != float64(2) {
		t.Fatalf("FetchCorrelation = %#v", corr)
	}
	if gotCorrelationQuery.Get("x_metric") != "hrv" ||
		gotCorrelationQuery.Get("y_metric") != "stress" ||
		gotCorrelationQuery.Get("lag_days") != "1" {
		t.Fatalf("correlation query = %v", gotCorrelationQuery)
	}

	settings, err := SetDataRoot(ctx, c, "/data")
	if err != nil || !settings.Success {
		t.Fatalf("SetDataRoot = %#v, %v", settings, err)
	}

	if !strings.HasPrefix(gotUserAgent, "foldline/") {
		t.Fatalf("User-Agent = %q, want foldline/*", gotUserAgent)
	}
	if gotRequestID == "" {
		t.Fatalf("X-Request-ID header missing")
	}
}

func TestEndpointHelpers_HTTPError(t *testing.T) {
	t.Parallel()

	c := serverConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"JSON import failed"}`, http.StatusInternalServerError)
	}))

	_, err := ImportGarminExport(context.Background(), c, "/tmp/export.zip")
	if err == nil || err.Error() != "API error: Internal Server Error" {
		t.Fatalf("ImportGarminExport error = %v, want API error: Internal Server Error", err)
	}
	if _, err := FetchTimeseries(context.Background(), c, MetricQuery{Metric: "hrv"}); err == nil {
		t.Fatalf("FetchTimeseries returned nil error, want status error")
	}
}

func TestParseDateLayouts(t *testing.T) {
	if !parseDate("").IsZero() {
		t.Fatalf("parseDate(\"\") should be zero")
	}
	if got := parseDate("2024-03-04"); got.Month() != time.March || got.Day() != 4 {
		t.Fatalf("parseDate = %v, want 2024-03-04", got)
	}
	if parseDate("2024-03-04T10:00:00Z").IsZero() {
		t.Fatalf("parseDate should accept RFC3339")
	}
	if !parseDate("yesterday").IsZero() {
		t.Fatalf("parseDate should reject garbage")
	}
}
