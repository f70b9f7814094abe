package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"accu-registry/utils"
)

var (
	// Global rate limiter: 100 requests per minute per client
	globalLimiter = utils.NewRateLimiter(100, time.Minute)
)

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs each request and records request metrics
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(lrw, r)

		duration := time.Since(start)
		utils.LogInfo("Request: %s %s - Status: %d - Duration: %v",
			r.Method,
			r.URL.Path,
			lrw.statusCode,
			duration,
		)
		utils.GetMetrics().RecordRequest(duration, lrw.statusCode >= 500)
	})
}

// RateLimitMiddleware rejects clients exceeding the global limit
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := r.RemoteAddr
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			clientIP = forwarded
		}

		if !globalLimiter.Allow(clientIP) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   "TooManyRequests",
				"message": "rate limit exceeded",
				"reset":   globalLimiter.GetResetTime(clientIP),
			})
			return
		}

		w.Header().Set("X-RateLimit-Limit", "100")
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(globalLimiter.GetRemaining(clientIP)))

		next.ServeHTTP(w, r)
	})
}

// RecoveryMiddleware converts panics into 500 responses
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				utils.LogError("Panic recovered: %v", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{
					"error":   "Internal",
					"message": "internal server error",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// CORSMiddleware sets permissive CORS headers for the dashboard
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Origin, Cache-Control")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
