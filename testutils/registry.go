package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"go.viam.com/test"
)

// RegistryServer is an in-process stand-in for a SODA building dataset. It answers every query
// with the same records and remembers the queries it got.
type RegistryServer struct {
	*httptest.Server

	mu      sync.Mutex
	queries []url.Values
	records []map[string]interface{}
	status  int
}

// NewRegistryServer starts a RegistryServer that is closed when the test ends.
func NewRegistryServer(tb testing.TB, records ...map[string]interface{}) *RegistryServer {
	tb.Helper()
	rs := &RegistryServer{records: records, status: http.StatusOK}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.queries = append(rs.queries, r.URL.Query())
		status, records := rs.status, rs.records
		rs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			return
		}
		test.That(tb, json.NewEncoder(w).Encode(records), test.ShouldBeNil)
	}))
	tb.Cleanup(rs.Close)
	return rs
}

// SetStatus makes the server answer with status, and no records unless it is 200.
func (rs *RegistryServer) SetStatus(status int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.status = status
}

// Queries returns the query parameters of every request so far.
func (rs *RegistryServer) Queries() []url.Values {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]url.Values(nil), rs.queries...)
}

// Record builds a registry record the way SODA encodes it, with every value a string.
func Record(lat, lon, units string) map[string]interface{} {
	return map[string]interface{}{"latitude": lat, "longitude": lon, "ex_dwelling_unit": units}
}
