package server

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/signspell/internal/capture"
)

func TestStreamHandler_WritesFrames(t *testing.T) {
	preview := capture.NewPreview()
	preview.StoreJPEG([]byte{0xff, 0xd8, 0xff, 0xd9})

	ts := httptest.NewServer(NewStreamHandler(preview))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("Content-Type = %s", ct)
	}

	r := bufio.NewReader(resp.Body)
	var header []string
	for len(header) < 3 {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read error = %v", err)
		}
		header = append(header, strings.TrimSpace(line))
	}

	want := []string{"--frame", "Content-Type: image/jpeg", "Content-Length: 4"}
	for i := range want {
		if header[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, header[i], want[i])
		}
	}
}

func TestStreamHandler_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewStreamHandler(capture.NewPreview()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stream", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
