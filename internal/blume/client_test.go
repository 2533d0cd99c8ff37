package blume

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchPage_DecodesLatin1(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<td>12 \xb5g/m\xb3</td>"))
	}))
	defer ts.Close()

	c := NewClient(5*time.Second, 1024)
	body, err := c.FetchPage(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if body != "<td>12 µg/m³</td>" {
		t.Fatalf("body = %q", body)
	}
}

func TestFetchPage_ReplacesInvalidUTF8(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("ab\xffcd"))
	}))
	defer ts.Close()

	c := NewClient(5*time.Second, 1024)
	body, err := c.FetchPage(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if body != "ab?cd" {
		t.Fatalf("body = %q; want ab?cd", body)
	}
}

func TestFetchPage_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	c := NewClient(5*time.Second, 1024)
	_, err := c.FetchPage(context.Background(), ts.URL)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("err = %v; want status error", err)
	}
}

func TestFetchPage_SizeCap(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer ts.Close()

	c := NewClient(5*time.Second, 10)
	body, err := c.FetchPage(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(body) != 10 {
		t.Fatalf("len(body) = %d; want 10", len(body))
	}
}

func TestFetchPage_ConnectionError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := NewClient(time.Second, 1024)
	if _, err := c.FetchPage(context.Background(), url); err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		contentType string
		want        string
	}{
		{
			name:        "no charset, utf-8 with a stray byte",
			data:        "<td>12 \xc2\xb5g</td> ab\xffcd",
			contentType: "text/html",
			want:        "<td>12 µg</td> ab?cd",
		},
		{
			name:        "no content type at all",
			data:        "\xb5g/m\xb3",
			contentType: "",
			want:        "?g/m?",
		},
		{
			name:        "meta charset",
			data:        `<meta http-equiv="Content-Type" content="text/html; charset=iso-8859-1"><td>12 \xb5g</td>`,
			contentType: "text/html",
			want:        `<meta http-equiv="Content-Type" content="text/html; charset=iso-8859-1"><td>12 µg</td>`,
		},
		{
			name:        "header charset wins",
			data:        "12 \xb5g",
			contentType: "text/html; charset=iso-8859-1",
			want:        "12 µg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeBody([]byte(tt.data), tt.contentType); got != tt.want {
				t.Errorf("DecodeBody(%q) = %q; want %q", tt.data, got, tt.want)
			}
		})
	}
}
