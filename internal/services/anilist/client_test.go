package anilist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/anirank/anirank/internal/config"
	"github.com/anirank/anirank/internal/errs"
	"github.com/sirupsen/logrus"
)

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	client, err := NewClient(&config.Config{AniListURL: endpoint}, logger)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestAnimeByIDMapsPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"Media":{
			"id":21,
			"title":{"romaji":"One Piece","english":"","native":"ワンピース"},
			"description":"<p>Gold Roger was known as the <b>Pirate King</b>.</p>",
			"coverImage":{"extraLarge":"","large":"http://img/large.png","medium":"http://img/med.png"},
			"averageScore":88,
			"episodes":null,
			"status":"RELEASING",
			"season":"FALL",
			"seasonYear":1999,
			"genres":["Action","Adventure"],
			"siteUrl":"http://example.com/21"}}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	anime, err := client.AnimeByID(context.Background(), 21)
	if err != nil {
		t.Fatalf("AnimeByID failed: %v", err)
	}

	if anime.Title != "One Piece" {
		t.Errorf("title fallback wrong, got %q", anime.Title)
	}
	if anime.Synopsis != "Gold Roger was known as the Pirate King." {
		t.Errorf("synopsis not stripped: %q", anime.Synopsis)
	}
	if anime.Score == nil || *anime.Score != 8.8 {
		t.Errorf("score not scaled to /10: %v", anime.Score)
	}
	if anime.ImageURL != "http://img/large.png" {
		t.Errorf("image priority wrong: %q", anime.ImageURL)
	}
	if anime.Episodes != nil {
		t.Errorf("null episodes must stay nil (ongoing), got %v", anime.Episodes)
	}
	if anime.Season != "fall" {
		t.Errorf("season not lowercased: %q", anime.Season)
	}
}

func TestAnimeByIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"Media":null}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.AnimeByID(context.Background(), 404)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestErrorMessagesJoined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"errors":[{"message":"first problem"},{"message":"second problem"}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Top(context.Background(), 10, 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "first problem; second problem") {
		t.Errorf("messages not joined: %v", err)
	}
}

func TestRequestsAreCached(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		fmt.Fprint(w, `{"data":{"Page":{"pageInfo":{"currentPage":1,"hasNextPage":false},"media":[]}}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	if _, err := client.Top(ctx, 10, 1); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := client.Top(ctx, 10, 1); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("identical queries must share one request, got %d", n)
	}

	// A different page is a different cache key
	if _, err := client.Top(ctx, 10, 2); err != nil {
		t.Fatalf("third call failed: %v", err)
	}
	if n := atomic.LoadInt32(&requests); n != 2 {
		t.Errorf("expected 2 requests for 2 distinct queries, got %d", n)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"<i>Shinsekai yori</i> adapts the novel.", "Shinsekai yori adapts the novel."},
		{"line one<br>line two", "line one line two"},
		{"<p>first</p><p>second</p>", "first second"},
	}

	for _, tt := range tests {
		if got := stripHTML(tt.in); got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
