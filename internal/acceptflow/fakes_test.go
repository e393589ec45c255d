package acceptflow

import (
	"context"
	"io"
	"sync"
	"time"

	"valentine/internal/capture"
)

type rasterizeCall struct {
	at      time.Time
	surface capture.Surface
	opts    capture.RenderOptions
}

type fakeRasterizer struct {
	mu    sync.Mutex
	calls []rasterizeCall
	data  []byte
	err   error
	block chan struct{}

	inFlight int
	peak     int
}

func (f *fakeRasterizer) Rasterize(_ context.Context, s capture.Surface, opts capture.RenderOptions) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rasterizeCall{at: time.Now(), surface: s, opts: opts})
	f.inFlight++
	f.peak = max(f.peak, f.inFlight)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return f.data, f.err
}

func (f *fakeRasterizer) Peak() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak
}

func (f *fakeRasterizer) Calls() []rasterizeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rasterizeCall(nil), f.calls...)
}

type saveCall struct {
	key         string
	data        []byte
	contentType string
}

type fakeUploader struct {
	mu    sync.Mutex
	calls []saveCall
	url   string
	err   error
}

func (f *fakeUploader) Save(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	b, _ := io.ReadAll(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, saveCall{key: key, data: b, contentType: contentType})
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func (f *fakeUploader) Calls() []saveCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]saveCall(nil), f.calls...)
}

type recordCall struct {
	pageID string
	url    *string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordCall
	err   error
}

func (f *fakeRecorder) RecordAcceptance(_ context.Context, pageID string, url *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordCall{pageID: pageID, url: url})
	return f.err
}

func (f *fakeRecorder) Calls() []recordCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordCall(nil), f.calls...)
}

type notifyCall struct {
	pageID   string
	url      *string
	receiver *string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

func (f *fakeNotifier) NotifyAcceptance(_ context.Context, pageID string, url, receiver *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifyCall{pageID: pageID, url: url, receiver: receiver})
	return f.err
}

func (f *fakeNotifier) Calls() []notifyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notifyCall(nil), f.calls...)
}

type fakeCelebration struct {
	mu      sync.Mutex
	started []string
}

func (f *fakeCelebration) Start(pageID string, done func()) {
	f.mu.Lock()
	f.started = append(f.started, pageID)
	f.mu.Unlock()
	done()
}

func (f *fakeCelebration) Started() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.started...)
}

type fakeSaver struct {
	url      string
	data     []byte
	filename string
}

func (f *fakeSaver) SaveURL(url, filename string) error {
	f.url, f.filename = url, filename
	return nil
}

func (f *fakeSaver) SaveBytes(data []byte, filename string) error {
	f.data, f.filename = data, filename
	return nil
}
