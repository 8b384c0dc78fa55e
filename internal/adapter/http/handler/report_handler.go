package handler

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"payment-forecast/internal/core/ports"
	"payment-forecast/pkg/response"
)

// ReportHandler serves the forecast aggregate produced by an ingestion run.
// It is read-only: requests never re-trigger parsing.
type ReportHandler struct {
	forecast  ports.ForecastReader
	merchants ports.MerchantDirectory
	report    ports.IngestReport
}

// NewReportHandler creates a handler over a completed run.
func NewReportHandler(forecast ports.ForecastReader, merchants ports.MerchantDirectory, report ports.IngestReport) *ReportHandler {
	return &ReportHandler{
		forecast:  forecast,
		merchants: merchants,
		report:    report,
	}
}

// ForecastMerchant is one report column.
type ForecastMerchant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ForecastDay is one report row: the day plus one amount per merchant
// column, absent cells rendered as "0.00".
type ForecastDay struct {
	Date    string   `json:"date"`
	Amounts []string `json:"amounts"`
}

// ForecastResponse is the JSON report body.
type ForecastResponse struct {
	Report    ports.IngestReport `json:"report"`
	Merchants []ForecastMerchant `json:"merchants"`
	Days      []ForecastDay      `json:"days"`
}

// GetForecast handles GET /api/v1/forecast.
func (h *ReportHandler) GetForecast(c *gin.Context) {
	table := h.forecast.Snapshot()

	merchantIDs := table.MerchantIDs()
	merchants := make([]ForecastMerchant, 0, len(merchantIDs))
	for _, id := range merchantIDs {
		name, _ := h.merchants.MerchantName(id)
		merchants = append(merchants, ForecastMerchant{ID: id, Name: name})
	}

	days := make([]ForecastDay, 0, len(table))
	for _, day := range table.Days() {
		row := ForecastDay{Date: day.String(), Amounts: make([]string, 0, len(merchantIDs))}
		for _, id := range merchantIDs {
			row.Amounts = append(row.Amounts, table.Amount(day, id).String())
		}
		days = append(days, row)
	}

	response.OK(c, ForecastResponse{
		Report:    h.report,
		Merchants: merchants,
		Days:      days,
	})
}

var reportTemplate = template.Must(template.New("report").Parse(`<html>
<head>
<style>
table { font-family: arial, sans-serif; border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #cccccc; text-align: left; padding: 8px; }
tr:nth-child(even) { background-color: #cccccc; }
</style>
</head>
<body>
<table>
<tr><th>Date</th>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr><td>{{.Date}}</td>{{range .Cells}}<td>&pound;{{.}}</td>{{end}}</tr>
{{end}}</table>
</body>
</html>`))

type reportRow struct {
	Date  string
	Cells []string
}

// GetReportPage handles GET /report: an HTML table sorted by day ascending
// with one column per known merchant, sorted by id and headed by merchant
// name. Absent cells render as £0.00.
func (h *ReportHandler) GetReportPage(c *gin.Context) {
	table := h.forecast.Snapshot()

	merchantIDs := table.MerchantIDs()
	headers := make([]string, 0, len(merchantIDs))
	for _, id := range merchantIDs {
		name, ok := h.merchants.MerchantName(id)
		if !ok {
			name = fmt.Sprintf("merchant %d", id)
		}
		headers = append(headers, name)
	}

	rows := make([]reportRow, 0, len(table))
	for _, day := range table.Days() {
		row := reportRow{Date: day.Pretty(), Cells: make([]string, 0, len(merchantIDs))}
		for _, id := range merchantIDs {
			row.Cells = append(row.Cells, table.Amount(day, id).String())
		}
		rows = append(rows, row)
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := reportTemplate.Execute(c.Writer, gin.H{"Headers": headers, "Rows": rows}); err != nil {
		c.Error(err) //nolint:errcheck
	}
}

// HealthCheck handles GET /health. The service has no external dependencies
// once the feed is ingested, so this is a plain liveness probe.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
