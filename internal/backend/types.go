package backend

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const backendDateLayout = "2006-01-02"

// StatusResponse mirrors the payload returned by /status.
type StatusResponse struct {
	DBInitialized    bool           `json:"db_initialized"`
	AvailableMetrics []string       `json:"available_metrics"`
	MinDate          *string        `json:"min_date"`
	MaxDate          *string        `json:"max_date"`
	Counts           map[string]int `json:"counts"`
}

// DateRange returns the parsed min/max dates. Missing or malformed dates are
// returned as the zero time.
func (s StatusResponse) DateRange() (time.Time, time.Time) {
	return parseDatePtr(s.MinDate), parseDatePtr(s.MaxDate)
}

// HasMetric reports whether the backend lists name as available.
func (s StatusResponse) HasMetric(name string) bool {
	for _, m := range s.AvailableMetrics {
		if m == name {
			return true
		}
	}
	return false
}

// ImportResponse mirrors the payload of the /import/* endpoints.
type ImportResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Summary map[string]any `json:"summary"`
}

// SettingsResponse mirrors the payload of the /settings/* endpoints.
type SettingsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DataPoint is a single dated value from /metrics/heatmap or /metrics/timeseries.
type DataPoint struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// CorrelationResponse mirrors /metrics/correlation.
type CorrelationResponse struct {
	XValues []float64      `json:"x_values"`
	YValues []float64      `json:"y_values"`
	Dates   []string       `json:"dates"`
	Stats   map[string]any `json:"stats"`
}

// JSON import data types accepted by /import/json-folder.
const (
	JSONSleep          = "sleep"
	JSONDailySummaries = "daily_summaries"
	JSONAll            = "all"
)

// MetricQuery configures /metrics/heatmap and /metrics/timeseries requests.
type MetricQuery struct {
	Metric    string
	StartDate string
	EndDate   string
}

func (q MetricQuery) encode() string {
	values := url.Values{}
	values.Set("metric", strings.TrimSpace(q.Metric))
	if start := strings.TrimSpace(q.StartDate); start != "" {
		values.Set("start_date", start)
	}
	if end := strings.TrimSpace(q.EndDate); end != "" {
		values.Set("end_date", end)
	}
	return values.Encode()
}

// CorrelationQuery configures /metrics/correlation requests.
type CorrelationQuery struct {
	XMetric string
	YMetric string
	LagDays int
}

func (q CorrelationQuery) encode() string {
	values := url.Values{}
	values.Set("x_metric", strings.TrimSpace(q.XMetric))
	values.Set("y_metric", strings.TrimSpace(q.YMetric))
	if q.LagDays != 0 {
		values.Set("lag_days", strconv.Itoa(q.LagDays))
	}
	return values.Encode()
}

// FetchStatus retrieves backend and database status.
func FetchStatus(ctx context.Context, r Requester) (*StatusResponse, error) {
	status, err := GetJSON[StatusResponse](ctx, r, "/status")
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// ImportGarminExport asks the backend to ingest a Garmin "Export My Data" zip.
func ImportGarminExport(ctx context.Context, r Requester, zipPath string) (ImportResponse, error) {
	return PostJSON[ImportResponse](ctx, r, "/import/garmin-export", map[string]string{"zip_path": zipPath})
}

// ImportFitFolder asks the backend to ingest a directory of FIT files.
func ImportFitFolder(ctx context.Context, r Requester, folderPath string) (ImportResponse, error) {
	return PostJSON[ImportResponse](ctx, r, "/import/fit-folder", map[string]string{"folder_path": folderPath})
}

// ImportJSONFolder asks the backend to ingest GDPR JSON files of dataType.
func ImportJSONFolder(ctx context.Context, r Requester, folderPath, dataType string) (ImportResponse, error) {
	if strings.TrimSpace(dataType) == "" {
		dataType = JSONSleep
	}
	return PostJSON[ImportResponse](ctx, r, "/import/json-folder", map[string]string{
		"folder_path": folderPath,
		"data_type":   dataType,
	})
}

// FetchHeatmap retrieves daily values for a year-by-day heatmap.
func FetchHeatmap(ctx context.Context, r Requester, query MetricQuery) ([]DataPoint, error) {
	return GetJSON[[]DataPoint](ctx, r, "/metrics/heatmap?"+query.encode())
}

// FetchTimeseries retrieves daily values for a line chart.
func FetchTimeseries(ctx context.Context, r Requester, query MetricQuery) ([]DataPoint, error) {
	return GetJSON[[]DataPoint](ctx, r, "/metrics/timeseries?"+query.encode())
}

// FetchCorrelation retrieves aligned values and statistics for two metrics.
func FetchCorrelation(ctx context.Context, r Requester, query CorrelationQuery) (CorrelationResponse, error) {
	return GetJSON[CorrelationResponse](ctx, r, "/metrics/correlation?"+query.encode())
}

// SetDataRoot updates the backend's data storage directory.
func SetDataRoot(ctx context.Context, r Requester, dataRoot string) (SettingsResponse, error) {
	return PostJSON[SettingsResponse](ctx, r, "/settings/data-root", map[string]string{"data_root": dataRoot})
}

func parseDatePtr(value *string) time.Time {
	if value == nil {
		return time.Time{}
	}
	return parseDate(*value)
}

func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{backendDateLayout, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
