package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/okian/portfolio/internal/domain/ratelimit"
	"github.com/okian/portfolio/pkg/metrics"
)

// HTTP status code constants.
const (
	statusBadRequest      = 400
	statusNotFound        = 404
	statusTooManyRequests = 429
	statusInternalError   = 500
)

// Plain text bodies of a 429.
const (
	MsgRateLimited      = "Too many submissions, please try again later."
	MsgAlertRateLimited = "Too many reports, please try again later."
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Microseconds()) / 1000
		metrics.RecordHTTPRequest(endpoint, r.Method, strconv.Itoa(wrapped.statusCode), durationMs)

		if wrapped.statusCode >= statusBadRequest {
			metrics.RecordErrorByType(getErrorType(wrapped.statusCode), getErrorSeverity(wrapped.statusCode))
		}
	}
}

// CORSMiddleware allows cross-origin calls from origin and answers
// preflight requests with 204.
func CORSMiddleware(origin string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
			if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
				h.Set("Access-Control-Allow-Headers", req)
				h.Add("Vary", "Access-Control-Request-Headers")
			}
			h.Set("Content-Length", "0")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// Limiter decides whether a client may make another attempt. Submissions
// and browser reports are charged against separate windows.
type Limiter interface {
	AllowSubmission(ctx context.Context, clientKey string) ratelimit.Info
	AllowAlert(ctx context.Context, clientKey string) ratelimit.Info
}

// AllowFunc charges one attempt against clientKey's window.
type AllowFunc func(ctx context.Context, clientKey string) ratelimit.Info

// KeyFunc names the client a request is charged to.
type KeyFunc func(r *http.Request) string

// RateLimitMiddleware rejects clients over their budget with 429 and a
// plain text message. Every request that reaches it is charged.
func RateLimitMiddleware(allow AllowFunc, key KeyFunc, message string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := allow(r.Context(), key(r))
		h := w.Header()
		h.Set("RateLimit-Limit", strconv.Itoa(info.Limit))
		h.Set("RateLimit-Remaining", strconv.Itoa(info.Remaining))
		if !info.Allowed {
			h.Set("Retry-After", strconv.Itoa(int((info.RetryAfter+time.Second-1)/time.Second)))
			h.Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = fmt.Fprint(w, message)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// ClientKey keys requests on the remote address host. X-Forwarded-For is
// read only when that host falls inside one of trusted; the hops are then
// walked from the right and the first address outside trusted wins.
func ClientKey(trusted []netip.Prefix) KeyFunc {
	return func(r *http.Request) string {
		host := remoteHost(r)
		addr, err := netip.ParseAddr(host)
		if err != nil || !inPrefixes(trusted, addr) {
			return host
		}

		hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
		client := host
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			client = hop.Unmap().String()
			if !inPrefixes(trusted, hop) {
				break
			}
		}
		return client
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func inPrefixes(prefixes []netip.Prefix, addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// getErrorType returns a standardized error type based on HTTP status code.
func getErrorType(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "server_error"
	case statusCode == statusTooManyRequests:
		return "rate_limit"
	case statusCode == statusNotFound:
		return "not_found"
	case statusCode >= statusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

// getErrorSeverity returns error severity based on HTTP status code.
func getErrorSeverity(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "high"
	case statusCode >= statusBadRequest:
		return "medium"
	default:
		return "low"
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}
