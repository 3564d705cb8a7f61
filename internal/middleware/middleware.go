package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/proview/proview-api/internal/config"
	"github.com/proview/proview-api/internal/handlers"
	"github.com/proview/proview-api/internal/metrics"
	"github.com/proview/proview-api/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	handled    bool
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	errorType    string
}

var limiterInstance *WindowLimiter

var HealthHandler = WrapPublic(handlers.HealthHandler)

var (
	ChatHandler    = Wrap(handlers.ChatHandler)
	UploadHandler  = Wrap(handlers.UploadHandler)
	ClearHandler   = Wrap(handlers.ClearHandler)
	StatsHandler   = Wrap(handlers.StatsHandler)
	CleanupHandler = Wrap(handlers.CleanupHandler)
)

// Init wires the limiter once at startup; ctx scopes the backing Redis
// client to the process lifetime.
func Init(ctx context.Context) {
	limiterInstance = NewWindowLimiter(config.RateLimitRequests, time.Duration(config.RateLimitWindowSeconds)*time.Second, getLimiterStore(ctx))
}

// Wrap runs the shared request pipeline (trace id, CORS, auth, rate limit)
// before the actual handler and records status metrics after it.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200}
		re := processRequest(requestResponseStruct{req: r, writer: rec})
		if re.handled {
			return
		}
		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
	}
}

// WrapPublic skips auth and rate limiting; health and metrics style
// endpoints stay reachable for probes.
func WrapPublic(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200}
		re := requestResponseStruct{req: r, writer: rec, logger: logger_i.NewLogger("middleware")}
		re = injectTrace(re)
		re = applyCORS(re)
		if re.handled {
			return
		}
		next(rec, re.req)
		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")

	re = injectTrace(re)
	re = applyCORS(re)
	if re.handled {
		return re
	}
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = rateLimiter(re)
	return re
}

func handleBadRequest(re requestResponseStruct) {
	re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", re.req.RemoteAddr)
	handlers.WriteErrorResponse(re.writer, re.badRequest.httpCode, re.badRequest.errorMessage, re.badRequest.errorType)
}
