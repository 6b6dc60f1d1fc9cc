package server

import (
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/otherjamesbrown/moodsense/pkg/billing"
	"github.com/otherjamesbrown/moodsense/pkg/logging"
	"github.com/otherjamesbrown/moodsense/pkg/observability"
)

// Response headers set on every reply.
const (
	HeaderResponseTime = "X-Response-Time"
	HeaderMemoryUsage  = "X-Memory-Usage"
	HeaderRequestCost  = "X-Request-Cost-EUR"
)

// requestMetrics times every request, prices it, and reports the result as
// response headers, Prometheus metrics and one log line. The headers are
// written just before the status line, so they cover handler time up to the
// first write.
func requestMetrics(m *observability.Metrics, logger logging.Logger, dep billing.Deployment) func(http.Handler) http.Handler {
	cpus := dep.CPUs
	if cpus <= 0 {
		cpus = float64(runtime.NumCPU())
	}
	memGiB := dep.MemoryGiB
	if memGiB <= 0 {
		memGiB = billing.DefaultDeployment().MemoryGiB
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			memBefore := memoryMB()

			ctx := r.Context()
			if id := middleware.GetReqID(ctx); id != "" {
				ctx = logging.ContextWithRequestID(ctx, id)
				r = r.WithContext(ctx)
			}

			var cost billing.RequestCost
			var memAfter uint64
			hw := &headerWriter{ResponseWriter: w, status: http.StatusOK}
			hw.beforeHeader = func(h http.Header) {
				elapsed := time.Since(start)
				memAfter = memoryMB()
				cost = billing.EstimateRequest(elapsed, cpus, memGiB)
				h.Set(HeaderResponseTime, fmt.Sprintf("%.2fs", elapsed.Seconds()))
				h.Set(HeaderMemoryUsage, fmt.Sprintf("%dMB", memAfter))
				h.Set(HeaderRequestCost, fmt.Sprintf("%.6f", cost.Total))
			}

			next.ServeHTTP(hw, r)
			hw.ensureHeader()

			duration := time.Since(start)
			route := routePattern(r)
			if m != nil {
				m.RecordHTTPRequest(r.Method, route, strconv.Itoa(hw.status), duration.Seconds())
				m.RecordRequestCost(cost.Total)
			}

			logger.WithContext(ctx).Info("Request completed",
				logging.F("method", r.Method),
				logging.F("path", r.URL.Path),
				logging.F("route", route),
				logging.F("status", hw.status),
				logging.F("duration", duration),
				logging.F("memory_before_mb", memBefore),
				logging.F("memory_after_mb", memAfter),
				logging.F("cost_eur", cost.Total),
				logging.F("cpu_cost_eur", cost.CPU),
				logging.F("mem_cost_eur", cost.Memory),
				logging.F("req_cost_eur", cost.Request))
		})
	}
}

// headerWriter runs beforeHeader once, right before the status line is sent.
type headerWriter struct {
	http.ResponseWriter
	status       int
	wroteHeader  bool
	beforeHeader func(http.Header)
}

func (w *headerWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = code
	w.beforeHeader(w.ResponseWriter.Header())
	w.ResponseWriter.WriteHeader(code)
}

func (w *headerWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// ensureHeader flushes the headers for handlers that wrote nothing.
func (w *headerWriter) ensureHeader() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
}

func (w *headerWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// routePattern keeps metric label cardinality bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func memoryMB() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.Sys / (1 << 20)
}
