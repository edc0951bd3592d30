package maps

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rmagbanua/kaon-backend/pkg/types"
)

func TestClientGeocodeRequest(t *testing.T) {
	respBody := `{"status":"OK","results":[{"formatted_address":"Osmena Blvd, Cebu City, Philippines","geometry":{"location":{"lat":10.3157,"lng":123.8854}}}]}`

	var capturedURL string

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	httpClient := &http.Client{Transport: rt}
	client, err := NewClient("test-key", WithBaseURL("http://maps.test/api"), WithHTTPClient(httpClient))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	result, err := client.Geocode(context.Background(), "Osmena Blvd, Cebu City")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if !strings.HasPrefix(capturedURL, "http://maps.test/api/geocode/json?") {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if !strings.Contains(capturedURL, "region=ph") {
		t.Fatalf("expected ph region bias in %q", capturedURL)
	}
	if !strings.Contains(capturedURL, "key=test-key") {
		t.Fatalf("api key missing from %q", capturedURL)
	}
	if result.Location.Lat != 10.3157 || result.Location.Lng != 123.8854 {
		t.Fatalf("unexpected location %+v", result.Location)
	}
	if result.FormattedAddress != "Osmena Blvd, Cebu City, Philippines" {
		t.Fatalf("unexpected address %q", result.FormattedAddress)
	}
}

func TestClientGeocodeZeroResults(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"status":"ZERO_RESULTS","results":[]}`)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.Geocode(context.Background(), "nowhere at all"); err == nil {
		t.Fatal("expected not found error")
	}
}

func TestClientReverseGeocodeRequest(t *testing.T) {
	respBody := `{"status":"OK","results":[{"formatted_address":"IT Park, Cebu City","geometry":{"location":{"lat":10.33,"lng":123.9}}}]}`

	var capturedURL string

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", WithBaseURL("http://maps.test/api"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	address, err := client.ReverseGeocode(context.Background(), types.LatLng{Lat: 10.33, Lng: 123.9})
	if err != nil {
		t.Fatalf("reverse geocode: %v", err)
	}
	if !strings.Contains(capturedURL, "latlng=") {
		t.Fatalf("latlng missing from %q", capturedURL)
	}
	if address != "IT Park, Cebu City" {
		t.Fatalf("unexpected address %q", address)
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected api key error")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
