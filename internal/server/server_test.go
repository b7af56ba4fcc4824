package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/config"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
)

type fakeRunner struct {
	mu       sync.Mutex
	events   []model.Event
	delay    time.Duration
	got      []byte
	filename string
	calls    int
}

func (f *fakeRunner) Run(ctx context.Context, doc []byte, filename string) <-chan model.Event {
	f.mu.Lock()
	f.got, f.filename = doc, filename
	f.calls++
	f.mu.Unlock()

	out := make(chan model.Event)
	go func() {
		defer close(out)
		for _, ev := range f.events {
			if f.delay > 0 {
				time.Sleep(f.delay)
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func upload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func testServer(runner Runner, cfg config.ServerConfig) *httptest.Server {
	return httptest.NewServer(New(cfg, runner, nil).Handler())
}

func TestHealth(t *testing.T) {
	ts := testServer(&fakeRunner{}, config.ServerConfig{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "Resume Verifier API is running", body.Message)
}

func TestVerify_Rejections(t *testing.T) {
	runner := &fakeRunner{}
	ts := testServer(runner, config.ServerConfig{MaxUploadBytes: 1 << 20})
	defer ts.Close()

	tests := []struct {
		name   string
		field  string
		file   string
		size   int
		detail string
	}{
		{"missing file field", "other", "cv.pdf", 10, "No file provided"},
		{"unsupported type", "file", "cv.exe", 10, "Unsupported file type: .exe."},
		{"too large", "file", "cv.pdf", 1<<20 + 1, "File too large. Max 1MB."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := upload(t, tt.field, tt.file, bytes.Repeat([]byte("a"), tt.size))
			resp, err := http.Post(ts.URL+"/api/verify", ct, body)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var e errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
			assert.Contains(t, e.Detail, tt.detail)
		})
	}

	resp, err := http.Post(ts.URL+"/api/verify", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, 0, runner.calls)
}

func TestVerify_StreamsEvents(t *testing.T) {
	runner := &fakeRunner{events: []model.Event{
		{Type: model.EventProgress, Data: `{"step":"parsing","message":"Extracting text..."}`},
		{Type: model.EventClaims, Data: `{"first_name":"John"}`},
		{Type: model.EventComplete, Data: `{"success":true}`},
	}}
	ts := testServer(runner, config.ServerConfig{})
	defer ts.Close()

	body, ct := upload(t, "file", "cv.docx", []byte("resume bytes"))
	resp, err := http.Post(ts.URL+"/api/verify", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "event: progress\ndata: {\"step\":\"parsing\",\"message\":\"Extracting text...\"}\n\n"+
		"event: claims\ndata: {\"first_name\":\"John\"}\n\n"+
		"event: complete\ndata: {\"success\":true}\n\n", string(raw))

	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.Equal(t, []byte("resume bytes"), runner.got)
	assert.Equal(t, "cv.docx", runner.filename)
}

func TestVerify_Ping(t *testing.T) {
	runner := &fakeRunner{
		events: []model.Event{{Type: model.EventComplete, Data: `{}`}},
		delay:  120 * time.Millisecond,
	}
	ts := testServer(runner, config.ServerConfig{PingInterval: 20 * time.Millisecond})
	defer ts.Close()

	body, ct := upload(t, "file", "cv.pdf", []byte("x"))
	resp, err := http.Post(ts.URL+"/api/verify", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), ": ping\n\n")
	assert.True(t, strings.HasSuffix(string(raw), "event: complete\ndata: {}\n\n"))
}

func TestVerify_ClientDisconnectCancelsRun(t *testing.T) {
	block := make(chan struct{})
	cancelled := make(chan struct{})
	runner := runnerFunc(func(ctx context.Context, _ []byte, _ string) <-chan model.Event {
		out := make(chan model.Event)
		go func() {
			defer close(out)
			out <- model.Event{Type: model.EventProgress, Data: `{}`}
			close(block)
			<-ctx.Done()
			close(cancelled)
		}()
		return out
	})
	ts := testServer(runner, config.ServerConfig{})
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	body, ct := upload(t, "file", "cv.pdf", []byte("x"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/api/verify", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", ct)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: progress\n", line)

	<-block
	cancel()
	resp.Body.Close()

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("run context was not cancelled after client disconnect")
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := testServer(&fakeRunner{}, config.ServerConfig{})
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/verify", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Methods"))
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s := New(config.ServerConfig{}, &fakeRunner{}, nil)

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestWriteEvent_MultiLine(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, writeEvent(&b, model.Event{Type: model.EventError, Data: "a\nb"}))
	assert.Equal(t, "event: error\ndata: a\ndata: b\n\n", b.String())
}

type runnerFunc func(ctx context.Context, doc []byte, filename string) <-chan model.Event

func (f runnerFunc) Run(ctx context.Context, doc []byte, filename string) <-chan model.Event {
	return f(ctx, doc, filename)
}
