// Package ratelimit ограничивает частоту запросов к API с одного IP-адреса.
package ratelimit

import (
	"encoding/json"
	"net"
	"strconv"
	"sync"
	"time"

	"clipsync/internal/app/server/api/http/envelope"
	"clipsync/internal/domain/apperr"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter выдает каждому IP корзину на max запросов, которая полностью
// восстанавливается за window.
type Limiter struct {
	max    int
	window time.Duration
	log    *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

// New создает ограничитель. При max <= 0 запросы не ограничиваются.
func New(max int, window time.Duration, log *slog.Logger) *Limiter {
	return &Limiter{
		max:      max,
		window:   window,
		log:      log.With("component", "rate_limiter"),
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// Allow списывает один запрос с корзины ip.
func (l *Limiter) Allow(ip string) bool {
	if l.max <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.max)), l.max)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep убирает адреса, молчавшие дольше window: их корзины уже полные.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) >= l.window {
			delete(l.visitors, ip)
		}
	}
	l.lastSweep = now
}

// Middleware отвечает 429 в общем конверте, когда корзина клиента пуста.
func (l *Limiter) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		ip := clientIP(ctx.RemoteAddr())
		if l.Allow(ip) {
			next(ctx)
			return
		}

		l.log.Warn("rate limit exceeded", "ip", ip, "path", ctx.URL().Path)
		err := apperr.New(apperr.ErrRateLimited, "too many requests, please try again later")

		ctx.SetHeader("Retry-After", strconv.Itoa(int(l.window/time.Duration(l.max)/time.Second)+1))
		ctx.SetHeader("Content-Type", "application/json")
		ctx.SetStatus(apperr.Status(err))
		if err := json.NewEncoder(ctx.BodyWriter()).Encode(envelope.Error{Message: apperr.Message(err)}); err != nil {
			l.log.Error("encode error response", "error", err)
		}
	}
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
