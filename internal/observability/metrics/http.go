package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Middleware returns HTTP middleware for request metrics.
func Middleware(next http.Handler) http.Handler {
	if !enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			duration := time.Since(start).Seconds()

			// Normalize path to avoid high cardinality from hashes and ids
			path := normalizePath(r.URL.Path)

			httpRequestsTotal.WithLabelValues(
				r.Method,
				path,
				strconv.Itoa(rw.status),
			).Inc()

			httpDuration.WithLabelValues(
				r.Method,
				path,
			).Observe(duration)
		}()

		next.ServeHTTP(rw, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// normalizePath converts dynamic path segments to placeholders so every
// transaction hash, wallet address, and resource id does not become its own
// Prometheus label value. For example:
//
//	/api/v1/verify/0xabc... -> /api/v1/verify/{txHash}
//	/api/v1/resources/premium-post/access -> /api/v1/resources/{id}/access
func normalizePath(path string) string {
	switch path {
	case "/health", "/healthz", "/readyz", "/metrics", "/api/v1/config":
		return path
	}

	if !strings.HasPrefix(path, "/api/v1/") {
		return path
	}

	parts := strings.Split(strings.Trim(path[len("/api/v1/"):], "/"), "/")
	if len(parts) == 0 {
		return path
	}

	normalized := []string{"/api/v1", parts[0]}
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		switch {
		case isTxHash(part):
			normalized = append(normalized, "{txHash}")
		case isAddress(part):
			normalized = append(normalized, "{wallet}")
		case parts[0] == "resources" && len(normalized) == 2:
			// First segment under /resources is always the resource id.
			normalized = append(normalized, "{id}")
		default:
			normalized = append(normalized, part)
		}
	}
	return strings.Join(normalized, "/")
}

// isTxHash matches a 0x-prefixed 32-byte transaction hash.
func isTxHash(segment string) bool {
	return len(segment) == 66 && strings.HasPrefix(segment, "0x") && isHex(segment[2:])
}

// isAddress matches a 0x-prefixed 20-byte account address.
func isAddress(segment string) bool {
	return len(segment) == 42 && strings.HasPrefix(segment, "0x") && isHex(segment[2:])
}

// isHex returns true if the string is hexadecimal, either case.
func isHex(s string) bool {
	for _, c := range s {
		isDigit := c >= '0' && c <= '9'
		isLowerHex := c >= 'a' && c <= 'f'
		isUpperHex := c >= 'A' && c <= 'F'
		if !isDigit && !isLowerHex && !isUpperHex {
			return false
		}
	}
	return len(s) > 0
}
