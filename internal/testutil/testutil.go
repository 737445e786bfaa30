// Package testutil contains common testing helpers.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// UnmarshalJSON parses the JSON data into v, failing the test in case of failure.
func UnmarshalJSON[V any](t *testing.T, b []byte) V {
	t.Helper()
	var v V
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatal(err)
	}
	return v
}

// AssertContains fails the test if v is not present in s.
func AssertContains[S ~[]V, V comparable](t *testing.T, s S, v V) {
	t.Helper()
	if !slices.Contains(s, v) {
		t.Fatalf("%v is not present in %v", v, s)
	}
}

// AssertNotContains fails the test if v is present in s.
func AssertNotContains[S ~[]V, V comparable](t *testing.T, s S, v V) {
	t.Helper()
	if slices.Contains(s, v) {
		t.Fatalf("%v is present in %v", v, s)
	}
}

// AssertEqual compares two values and if they differ, fails the test and
// prints the difference between them.
func AssertEqual(t *testing.T, got, want any) {
	t.Helper()
	if diff := cmp.Diff(got, want); diff != "" {
		t.Fatalf("(-got +want):\n%s", diff)
	}
}

// RoundTripFunc is a function type that implements the [http.RoundTripper]
// interface.
type RoundTripFunc func(r *http.Request) (*http.Response, error)

// RoundTrip calls f(r).
func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// MockHTTPClient returns a [http.Client] that serves all requests made through
// it from handler h instead of the network.
func MockHTTPClient(h http.Handler) *http.Client {
	return &http.Client{
		Transport: RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			w := httptest.NewRecorder()
			r2 := r.Clone(r.Context())
			// ServeMux patterns with a host part match against Request.Host,
			// which is unset on client requests.
			r2.Host = r.URL.Host
			h.ServeHTTP(w, r2)
			return w.Result(), nil
		}),
	}
}
