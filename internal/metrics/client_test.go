package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api/v1/users/me", "users/me"},
		{"/api/v1/users/12", "users/{id}"},
		{"/api/v1/objects/12/comments/3", "objects/{id}/comments/{id}"},
		{"/api/v1/instruments/1/log_entries/2/file_attachments", "instruments/{id}/log_entries/{id}/file_attachments"},
		{"/sampledb/api/v1/objects", "objects"},
		{"/api/v1", ""},
		{"/livez", "livez"},
	}
	for _, tt := range tests {
		if got := Route(tt.in); got != tt.want {
			t.Errorf("Route(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTransport_RecordsRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	counter := clientRequestsTotal.WithLabelValues("GET", "users/{id}", "404")
	before := testutil.ToFloat64(counter)

	hc := &http.Client{Transport: Transport(nil)}
	resp, err := hc.Get(srv.URL + "/api/v1/users/7")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("requests_total delta: got %v, want 1", got)
	}
	if v := testutil.ToFloat64(clientRequestsInFlight); v != 0 {
		t.Errorf("in-flight: got %v, want 0", v)
	}
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial refused")
}

func TestTransport_Error(t *testing.T) {
	counter := clientRequestsTotal.WithLabelValues("GET", "users/me", "error")
	before := testutil.ToFloat64(counter)

	hc := &http.Client{Transport: Transport(failingTransport{})}
	if _, err := hc.Get("http://sampledb.invalid/api/v1/users/me"); err == nil {
		t.Fatal("expected error")
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("error requests delta: got %v, want 1", got)
	}
}
