package middleware

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"github.com/proview/proview-api/internal/adapter/utils"
	"github.com/proview/proview-api/internal/config"
	"github.com/proview/proview-api/internal/data/redisStore"
	"github.com/proview/proview-api/internal/metrics"
	"github.com/proview/proview-api/pkg/logger_i"
)

func getLimiterStore(ctx context.Context) *redisStore.Store {
	return redisStore.GetRedisStore(ctx)
}

func injectTrace(re requestResponseStruct) requestResponseStruct {
	req := re.req
	if req == nil {
		re.badRequest.httpCode = http.StatusBadRequest
		re.badRequest.errorMessage = "request is empty"
		re.badRequest.errorType = "ValidationError"
		re.badRequest.isBadRequest = true
		return re
	}
	trace := req.Header.Get("X-Trace-Id")
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	re.logger = re.logger.With("traceId", trace)
	ctx := context.WithValue(req.Context(), config.TRACE_ID_KEY, trace)
	req.Header.Set(`X-Trace-Id`, trace)
	re.req = req.WithContext(ctx)
	return re
}

func applyCORS(re requestResponseStruct) requestResponseStruct {
	origin := re.req.Header.Get("Origin")
	if origin == "" {
		return re
	}

	for _, allowed := range config.AllowedOrigins {
		if allowed == origin || allowed == "*" {
			h := re.writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", config.AuthHeaderName+", Content-Type, X-Trace-Id")
			h.Set("Vary", "Origin")
			break
		}
	}

	// preflight ends here, before auth
	if re.req.Method == http.MethodOptions {
		re.writer.WriteHeader(http.StatusNoContent)
		re.handled = true
	}
	return re
}

func authenticate(re requestResponseStruct) requestResponseStruct {
	if !IsValidKey(re.req.Header.Get(config.AuthHeaderName), re.logger) {
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusForbidden,
			errorMessage: "Invalid or missing " + config.AuthHeaderName + " header",
			errorType:    "AuthError",
		}
	}
	return re
}

// IsValidKey compares the shared secret in constant time. Absence and
// mismatch fail identically on every boundary.
func IsValidKey(headerValue string, log *logger_i.Logger) bool {
	if headerValue == "" {
		log.Warn("Empty auth header")
		return false
	}
	if subtle.ConstantTimeCompare([]byte(headerValue), []byte(config.AuthToken)) != 1 {
		log.Warn("Invalid auth header")
		return false
	}
	return true
}

func rateLimiter(re requestResponseStruct) requestResponseStruct {
	if limiterInstance == nil {
		return re
	}
	key := clientKey(re.req)
	if !limiterInstance.Allow(re.req.Context(), key) {
		metrics.IncrementRateLimitRejections()
		re.logger.Warn("Too many requests", "client", key)
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusTooManyRequests,
			errorMessage: "Too many requests. Please wait before trying again.",
			errorType:    "RateLimitError",
		}
	}
	return re
}

// clientKey prefers proxy headers so every caller behind one load balancer
// does not share a window.
func clientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
