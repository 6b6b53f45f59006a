package usecase

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeSummarizer struct {
	mu      sync.Mutex
	summary string
	err     error
	calls   int
	inputs  []string
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.inputs = append(f.inputs, text)
	return f.summary, f.err
}

func (f *fakeSummarizer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
	putErr  error
	puts    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Put(_ context.Context, key, summary string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	c.entries[key] = summary
	return nil
}

type stubChecker struct {
	mu  sync.Mutex
	err error
}

func (s *stubChecker) set(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *stubChecker) Ready(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

type stubOCR struct {
	text     string
	err      error
	gotBytes []byte
	gotMime  string
}

func (s *stubOCR) ExtractText(_ context.Context, image []byte, mimeType string) (string, error) {
	s.gotBytes = image
	s.gotMime = mimeType
	return s.text, s.err
}

type stubFetcher struct {
	text   string
	err    error
	gotURL string
}

func (s *stubFetcher) FetchText(_ context.Context, rawURL string) (string, error) {
	s.gotURL = rawURL
	return s.text, s.err
}

// manualDriver runs the job synchronously on demand.
type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	job(time.Now())
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

var errBoom = errors.New("boom")
