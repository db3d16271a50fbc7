package render

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRenderVideoInlineData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var in VideoInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode input: %v", err)
		}
		json.NewEncoder(w).Encode(videoResponse{
			Data:        []byte("clip-bytes"),
			ContentType: "video/webm",
		})
	}))
	defer srv.Close()

	c := NewVideoClient(srv.URL, 10*time.Second, nil)
	res, err := c.RenderVideo(context.Background(), VideoInput{})
	if err != nil {
		t.Fatalf("RenderVideo: %v", err)
	}
	if string(res.Bytes) != "clip-bytes" || res.ContentType != "video/webm" {
		t.Errorf("result = %q / %q", res.ContentType, res.Bytes)
	}
}

func TestRenderVideoDownloadsFromURL(t *testing.T) {
	assets := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte("mp4-bytes"))
	}))
	defer assets.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(videoResponse{URL: assets.URL + "/clip.mp4"})
	}))
	defer srv.Close()

	c := NewVideoClient(srv.URL, 10*time.Second, nil)
	res, err := c.RenderVideo(context.Background(), VideoInput{})
	if err != nil {
		t.Fatalf("RenderVideo: %v", err)
	}
	if string(res.Bytes) != "mp4-bytes" || res.ContentType != "video/mp4" {
		t.Errorf("result = %q / %q", res.ContentType, res.Bytes)
	}
}

func TestRenderVideoEmptyResponseIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewVideoClient(srv.URL, 10*time.Second, nil)
	if _, err := c.RenderVideo(context.Background(), VideoInput{}); err == nil {
		t.Fatal("expected error when service returns neither data nor url")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls = %d, empty response must not be retried", calls)
	}
}

func TestRenderVideoRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "render farm busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(videoResponse{Data: []byte("x")})
	}))
	defer srv.Close()

	c := NewVideoClient(srv.URL, 10*time.Second, nil)
	res, err := c.RenderVideo(context.Background(), VideoInput{})
	if err != nil {
		t.Fatalf("RenderVideo: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls = %d, want retry after 5xx", calls)
	}
	if res.ContentType != "video/mp4" {
		t.Errorf("content type = %q, want video/mp4 default", res.ContentType)
	}
}
