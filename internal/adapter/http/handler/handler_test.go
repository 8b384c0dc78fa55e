package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payment-forecast/internal/adapter/feed"
	"payment-forecast/internal/core/domain"
	"payment-forecast/internal/core/ports"
	"payment-forecast/internal/service"
	"payment-forecast/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testMerchantKey = "ABCDEFGHIJKLMNOPQRST"
	testPayerKey    = "payer-public-key"
)

// feedLine builds one well-formed record with a matching digest.
func feedLine(merchantID, merchantName, permissionID, amount string) string {
	digests := service.NewSHA256DigestService()
	hash := digests.ToHex(digests.Digest(testMerchantKey, testPayerKey, permissionID, "1493654399", amount))
	return strings.Join([]string{
		"2017-05-01T10:00:00Z", merchantID, merchantName, testMerchantKey,
		"12", testPayerKey, permissionID,
		"2017-05-01T15:59:59Z", "1493654399", "GBP", amount, hash,
	}, ",")
}

// ingestLines runs a full ingestion over the given feed lines (a header is
// prepended) and returns the run context for the handlers.
func ingestLines(t *testing.T, lines ...string) (*service.IngestService, ports.IngestReport) {
	t.Helper()
	log := logger.NewWithWriter("error", &bytes.Buffer{})
	ingest := service.NewIngestService(service.NewSHA256DigestService(), service.NewLogDiagnosticSink(log), log)
	report, err := ingest.Run(feed.NewLinesSource(append([]string{"header"}, lines...)))
	require.NoError(t, err)
	return ingest, report
}

func testRouter(ingest *service.IngestService, report ports.IngestReport) *gin.Engine {
	return SetupRouter(RouterDeps{
		Forecast:  ingest,
		Merchants: ingest,
		Report:    report,
		Logger:    zerolog.Nop(),
	})
}

func TestGetForecast_ReportsAggregate(t *testing.T) {
	ingest, report := ingestLines(t,
		feedLine("7", "Milliways", "1", "10.50"),
		feedLine("3", "Ankh-Morpork Post", "2", "4.00"),
		feedLine("7", "Milliways", "3", "0.25"),
	)

	w := httptest.NewRecorder()
	testRouter(ingest, report).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/forecast", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ForecastResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// Merchant columns sorted by id.
	require.Len(t, resp.Data.Merchants, 2)
	assert.Equal(t, ForecastMerchant{ID: 3, Name: "Ankh-Morpork Post"}, resp.Data.Merchants[0])
	assert.Equal(t, ForecastMerchant{ID: 7, Name: "Milliways"}, resp.Data.Merchants[1])

	require.Len(t, resp.Data.Days, 1)
	assert.Equal(t, "2017-05-01", resp.Data.Days[0].Date)
	assert.Equal(t, []string{"4.00", "10.75"}, resp.Data.Days[0].Amounts)

	assert.Equal(t, 3, resp.Data.Report.Accepted)
	assert.Equal(t, report.RunID, resp.Data.Report.RunID)
}

func TestGetForecast_AbsentCellIsZero(t *testing.T) {
	// Two merchants settling on different days: each day carries a 0.00
	// cell for the other merchant.
	digests := service.NewSHA256DigestService()
	hash := digests.ToHex(digests.Digest(testMerchantKey, testPayerKey, "2", "1493654400", "4.00"))
	// Due at the cutoff hour, so it settles the next day.
	nextDay := strings.Join([]string{
		"2017-05-01T10:00:00Z", "3", "Ankh-Morpork Post", testMerchantKey,
		"12", testPayerKey, "2",
		"2017-05-01T16:00:00Z", "1493654400", "GBP", "4.00", hash,
	}, ",")

	ingest, report := ingestLines(t,
		feedLine("7", "Milliways", "1", "10.50"),
		nextDay,
	)

	w := httptest.NewRecorder()
	testRouter(ingest, report).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/forecast", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ForecastResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Data.Days, 2)
	assert.Equal(t, "2017-05-01", resp.Data.Days[0].Date)
	assert.Equal(t, []string{"0.00", "10.50"}, resp.Data.Days[0].Amounts)
	assert.Equal(t, "2017-05-02", resp.Data.Days[1].Date)
	assert.Equal(t, []string{"4.00", "0.00"}, resp.Data.Days[1].Amounts)
}

func TestGetForecast_EmptyRun(t *testing.T) {
	ingest, report := ingestLines(t)

	w := httptest.NewRecorder()
	testRouter(ingest, report).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/forecast", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ForecastResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Merchants)
	assert.Empty(t, resp.Data.Days)
	assert.Equal(t, 0, resp.Data.Report.Lines)
}

func TestGetReportPage_RendersTable(t *testing.T) {
	ingest, report := ingestLines(t,
		feedLine("7", "Milliways", "1", "10.50"),
		feedLine("3", "Ankh-Morpork Post", "2", "4.00"),
	)

	w := httptest.NewRecorder()
	testRouter(ingest, report).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	assert.Contains(t, body, "<th>Date</th>")
	assert.Contains(t, body, "<th>Ankh-Morpork Post</th><th>Milliways</th>")
	assert.Contains(t, body, "<td>1 May 2017</td>")
	assert.Contains(t, body, "<td>&pound;4.00</td><td>&pound;10.75</td>")
}

func TestGetReportPage_EscapesMerchantName(t *testing.T) {
	ingest, report := ingestLines(t,
		feedLine("7", "Hugo's <Shop>", "1", "10.50"),
	)

	w := httptest.NewRecorder()
	testRouter(ingest, report).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<Shop>")
	assert.Contains(t, w.Body.String(), "&lt;Shop&gt;")
}

func TestHealthCheck(t *testing.T) {
	ingest, report := ingestLines(t)

	w := httptest.NewRecorder()
	testRouter(ingest, report).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestRejectedRecordsStillServeForecast(t *testing.T) {
	ingest, report := ingestLines(t,
		feedLine("7", "Milliways", "1", "10.50"),
		"not,enough,fields",
	)

	w := httptest.NewRecorder()
	testRouter(ingest, report).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/forecast", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ForecastResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Report.Accepted)
	assert.Equal(t, 1, resp.Data.Report.Rejected)
	require.Len(t, resp.Data.Days, 1)

	day := domain.CalendarDay{Year: 2017, Month: 4, Day: 1}
	assert.Equal(t, "10.50", ingest.Snapshot().Amount(day, 7).String())
}
