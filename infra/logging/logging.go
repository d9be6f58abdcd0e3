// Package logging builds the process logger: JSON lines on stdout, optionally
// teed to Loki and to a rotating file.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-gonic/gin"
	"github.com/giovaniif/motorent/infra/loki"
	"github.com/giovaniif/motorent/infra/requestid"
	"github.com/giovaniif/motorent/infra/tracing"
)

type Options struct {
	ServiceName string
	LokiUrl     string
	LogFile     string
	Level       slog.Level
}

// New returns the logger and a closer that flushes every sink.
func New(opts Options) (*slog.Logger, io.Closer) {
	writers := []io.Writer{os.Stdout}
	var closers multiCloser
	if w := loki.NewWriter(opts.LokiUrl, map[string]string{"job": opts.ServiceName}); w != nil {
		writers = append(writers, w)
		closers = append(closers, w)
	}
	if opts.LogFile != "" {
		f := &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		}
		writers = append(writers, f)
		closers = append(closers, f)
	}
	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: opts.Level})
	logger := slog.New(contextHandler{Handler: handler}).With("service", opts.ServiceName)
	return logger, closers
}

// contextHandler stamps request and trace ids found on the context.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := requestid.FromContext(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if id := tracing.TraceId(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name)}
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Middleware writes one access log line per request.
func Middleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}
		logger.Log(c.Request.Context(), level, "http", attrs...)
	}
}
