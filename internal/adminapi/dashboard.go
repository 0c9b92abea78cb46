package adminapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/internal/webserver"
	"github.com/phytolab/orderport/pkg/metrics"
)

func registerDashboardRoutes() {
	webserver.ApiGET("/crm/dashboard", getDashboard)
	webserver.ApiGET("/crm/metrics/:name", getMetricSeries)
}

type dashboardSummary struct {
	ProductCount    int     `json:"productCount"`
	UserCount       int     `json:"userCount"`
	OrderCount      int     `json:"orderCount"`
	PendingOrders   int     `json:"pendingOrders"`
	ReceivedOrders  int     `json:"receivedOrders"`
	CompletedOrders int     `json:"completedOrders"`
	Revenue         float64 `json:"revenue"`
	AvgOrderValue   float64 `json:"avgOrderValue"`
	MedianOrder     float64 `json:"medianOrderValue"`
	QueueDepth      int     `json:"queueDepth"`
}

// getDashboard aggregates back-office headline figures from the in-memory
// state. Everything is computed on the fly; order volumes stay small enough
// that no rollup table is needed.
func getDashboard(c echo.Context) error {
	st := GetStore(c)
	orders := st.Orders()

	summary := dashboardSummary{
		ProductCount: len(st.Products()),
		UserCount:    len(st.Users()),
		OrderCount:   len(orders),
		QueueDepth:   GetApp(c).QueueDepth(),
	}

	totals := make([]float64, 0, len(orders))
	for _, o := range orders {
		totals = append(totals, o.Total)
		switch o.Status {
		case domain.OrderPending:
			summary.PendingOrders++
		case domain.OrderReceived:
			summary.ReceivedOrders++
		case domain.OrderCompleted:
			summary.CompletedOrders++
		}
	}
	if len(totals) > 0 {
		summary.Revenue, _ = stats.Sum(totals)
		summary.AvgOrderValue, _ = stats.Mean(totals)
		summary.MedianOrder, _ = stats.Median(totals)
	}

	return ok(c, summary)
}

type metricPoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// getMetricSeries returns the last 24h of a recorded gauge (cpu, memory,
// queue depth) for the dashboard charts.
func getMetricSeries(c echo.Context) error {
	name := c.Param("name")
	end := time.Now().Unix()
	start := end - 86400

	points, err := metrics.Select(name, start, end)
	if err != nil {
		return ok(c, []metricPoint{})
	}
	out := make([]metricPoint, 0, len(points))
	for _, p := range points {
		out = append(out, metricPoint{Timestamp: p.Timestamp, Value: p.Value})
	}
	return ok(c, out)
}
