package mcpsrv

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/qyinm/prodtui/logger"
)

const corsAllowHeaders = "Content-Type, Accept, Authorization, X-API-Key, Mcp-Protocol-Version, Mcp-Session-Id"

// guard rejects requests from unknown origins, over the rate limit or
// without the configured API key. Every rejection is logged at warn.
type guard struct {
	next    http.Handler
	origins map[string]struct{}
	limiter *rate.Limiter
	apiKey  string
	log     *logger.Logger
}

// WrapMCPHandler puts the origin, rate limit and API key checks in front of next.
func WrapMCPHandler(next http.Handler, cfg Config, log *logger.Logger) http.Handler {
	rps, burst := cfg.RPS, cfg.Burst
	if rps <= 0 {
		rps = 2
	}
	if burst <= 0 {
		burst = 5
	}

	g := &guard{
		next:    next,
		origins: make(map[string]struct{}, len(cfg.AllowedOrigins)),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		apiKey:  cfg.APIKey,
		log:     log,
	}
	for _, origin := range cfg.AllowedOrigins {
		g.origins[origin] = struct{}{}
	}
	return g
}

func (g *guard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" {
		if _, ok := g.origins[origin]; !ok {
			g.reject(w, r, http.StatusForbidden, "origin not allowed", zap.String("origin", origin))
			return
		}
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Vary", "Origin")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}

	if !g.limiter.Allow() {
		g.reject(w, r, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	if g.apiKey != "" && !keyMatches(requestKey(r), g.apiKey) {
		g.reject(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	g.next.ServeHTTP(w, r)
}

func (g *guard) reject(w http.ResponseWriter, r *http.Request, status int, reason string, fields ...zap.Field) {
	fields = append(fields,
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("remote", r.RemoteAddr),
	)
	g.log.Warn("mcp request rejected: "+reason, fields...)
	http.Error(w, reason, status)
}

// requestKey returns the X-API-Key header, or else the token of an
// "Authorization: Bearer <token>" header.
func requestKey(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get("X-API-Key")); k != "" {
		return k
	}
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

func keyMatches(got, want string) bool {
	if got == "" || len(got) != len(want) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
