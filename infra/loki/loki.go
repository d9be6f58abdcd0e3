package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	batchSize     = 20
	flushInterval = time.Second
)

// Writer buffers log lines and ships them to Loki's push API in batches.
type Writer struct {
	url     string
	labels  map[string]string
	client  *http.Client
	mu      sync.Mutex
	pending [][2]string
	ticker  *time.Ticker
	done    chan struct{}
	once    sync.Once
}

// NewWriter returns nil when baseUrl is empty so callers can skip Loki entirely.
func NewWriter(baseUrl string, labels map[string]string) *Writer {
	if baseUrl == "" {
		return nil
	}
	w := &Writer{
		url:     strings.TrimSuffix(baseUrl, "/") + "/loki/api/v1/push",
		labels:  labels,
		client:  &http.Client{Timeout: 5 * time.Second},
		pending: make([][2]string, 0, batchSize),
		ticker:  time.NewTicker(flushInterval),
		done:    make(chan struct{}),
	}
	go w.flushLoop()
	return w
}

// Write splits p on newlines; every non-empty line becomes one Loki entry.
func (w *Writer) Write(p []byte) (int, error) {
	now := strconv.FormatInt(time.Now().UnixNano(), 10)
	w.mu.Lock()
	for _, line := range bytes.Split(p, []byte("\n")) {
		if len(line) > 0 {
			w.pending = append(w.pending, [2]string{now, string(line)})
		}
	}
	full := len(w.pending) >= batchSize
	w.mu.Unlock()
	if full {
		w.flush()
	}
	return len(p), nil
}

func (w *Writer) flushLoop() {
	for {
		select {
		case <-w.done:
			return
		case <-w.ticker.C:
			w.flush()
		}
	}
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

func (w *Writer) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	values := w.pending
	w.pending = make([][2]string, 0, batchSize)
	w.mu.Unlock()

	raw, err := json.Marshal(pushRequest{Streams: []stream{{Stream: w.labels, Values: values}}})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.client.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(raw))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

// Close pushes what is left and stops the background flusher. Safe to call twice.
func (w *Writer) Close() error {
	w.once.Do(func() {
		w.ticker.Stop()
		close(w.done)
		w.flush()
	})
	return nil
}
