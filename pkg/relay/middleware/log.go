package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Log logs the HTTP requests.
func Log(debug bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statsWriter{ResponseWriter: w, status: http.StatusOK}

			start := time.Now()
			defer func() {
				attrs := []any{
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("remote", r.RemoteAddr),
					slog.Int("status", sw.status),
					slog.Duration("elapsed", time.Since(start)),
					slog.Int64("recv_size", r.ContentLength),
					slog.Int64("send_size", sw.written),
				}

				if debug {
					attrs = append(attrs,
						slog.Any("request_header", filterHeader(r.Header)),
						slog.Any("response_header", filterHeader(sw.Header())),
					)
				}

				slog.InfoContext(r.Context(), "request", attrs...)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

var hideHeaders = map[string]struct{}{
	"Authorization": {},
	"Cookie":        {},
	"Set-Cookie":    {},
}

func filterHeader(h http.Header) http.Header {
	if h == nil {
		return nil
	}

	out := make(http.Header)
	for k, v := range h {
		if _, ok := hideHeaders[k]; ok {
			out[k] = []string{"***"}
			continue
		}
		out[k] = v
	}

	return out
}

type statsWriter struct {
	http.ResponseWriter

	status  int
	written int64
}

func (w *statsWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statsWriter) Write(bts []byte) (int, error) {
	n, err := w.ResponseWriter.Write(bts)
	w.written += int64(n)
	return n, err
}
