package admin

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/metrics"
)

const maxAuditBodyBytes = 1024 // 1KB summary limit

// generateRequestID creates a short random request ID for audit correlation.
func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

func isMutation(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodDelete
}

// AuditMiddleware logs every mutating request (approvals, rejections, claims,
// config and cursor changes) and counts all requests.
func AuditMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	auditLogger := logger.With("component", "admin_audit")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if !isMutation(r.Method) {
			next.ServeHTTP(sw, r)
			metrics.HTTPRequestsTotal.WithLabelValues("admin", r.Method, strconv.Itoa(sw.statusCode)).Inc()
			return
		}

		start := time.Now()
		requestID := generateRequestID()

		var bodySummary string
		if r.Body != nil {
			bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxAuditBodyBytes+1))
			if err == nil {
				if len(bodyBytes) > maxAuditBodyBytes {
					bodySummary = string(bodyBytes[:maxAuditBodyBytes]) + "...(truncated)"
				} else {
					bodySummary = string(bodyBytes)
				}
				// Restore body for downstream handlers
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(bodyBytes), r.Body))
			}
		}

		next.ServeHTTP(sw, r)
		metrics.HTTPRequestsTotal.WithLabelValues("admin", r.Method, strconv.Itoa(sw.statusCode)).Inc()

		auditLogger.Info("admin API audit",
			"request_id", requestID,
			"timestamp", start.UTC().Format(time.RFC3339),
			"admin_id", adminID(r),
			"remote_addr", r.RemoteAddr,
			"method", r.Method,
			"path", r.URL.Path,
			"body_summary", bodySummary,
			"response_status", sw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.written {
		sw.statusCode = code
		sw.written = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.written {
		sw.written = true
	}
	return sw.ResponseWriter.Write(b)
}
