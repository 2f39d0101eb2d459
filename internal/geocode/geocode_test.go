package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestForwardBestMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != "tok" {
			t.Errorf("missing access token, got query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features":[{"center":[-122.33,47.61]},{"center":[0,0]}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	pt, found, err := c.Forward(context.Background(), "Seattle, WA")
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if !found {
		t.Fatalf("expected a match")
	}
	if pt.Longitude != -122.33 || pt.Latitude != 47.61 {
		t.Fatalf("unexpected point: %+v", pt)
	}
}

func TestForwardNoMatchIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	_, found, err := c.Forward(context.Background(), "nowhere in particular")
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if found {
		t.Fatalf("expected no match")
	}
}

func TestForwardDisabledWithoutBaseURL(t *testing.T) {
	c := NewClient("", "")
	_, found, err := c.Forward(context.Background(), "anywhere")
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if found {
		t.Fatalf("disabled client must not report matches")
	}
}

func TestForwardServerErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	if _, _, err := c.Forward(context.Background(), "Seattle"); err == nil {
		t.Fatalf("expected error on 502")
	}
}
