package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	clientRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sampledb",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of requests sent to SampleDB.",
		},
		[]string{"method", "route", "status"},
	)

	clientRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sampledb",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "SampleDB request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	clientRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sampledb",
			Subsystem: "client",
			Name:      "requests_in_flight",
			Help:      "Number of SampleDB requests awaiting a response.",
		},
	)
)

// Transport wraps next (http.DefaultTransport if nil) and records every
// round trip. The status label is "error" when no response arrived.
func Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripper{next: next}
}

type roundTripper struct {
	next http.RoundTripper
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clientRequestsInFlight.Inc()
	defer clientRequestsInFlight.Dec()

	start := time.Now()
	resp, err := rt.next.RoundTrip(req)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	route := Route(req.URL.Path)
	clientRequestsTotal.WithLabelValues(req.Method, route, status).Inc()
	clientRequestDuration.WithLabelValues(req.Method, route, status).Observe(time.Since(start).Seconds())
	return resp, err
}

// Route turns an API path into a low-cardinality label:
// "/api/v1/objects/12/comments/3" becomes "objects/{id}/comments/{id}".
func Route(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.Index(path, "api/v1/"); i >= 0 {
		path = path[i+len("api/v1/"):]
	} else if strings.HasSuffix(path, "api/v1") {
		return ""
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if _, err := strconv.Atoi(s); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
