package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	apperrors "dentabook/pkg/errors"
	"dentabook/pkg/logger"
	"dentabook/pkg/sanitizer"
)

const maxPhoneProbeBytes = 64 * 1024

// PhoneExtractor returns the patient phone a request acts for, or "".
type PhoneExtractor func(r *http.Request) string

// PhoneRateLimiter is a sliding-window limiter keyed by normalized phone, so
// "0791234567" and "+962791234567" share one budget.
type PhoneRateLimiter struct {
	mu             sync.Mutex
	requests       map[string][]time.Time
	limit          int
	window         time.Duration
	phoneExtractor PhoneExtractor
	key            sanitizer.Strategy
	log            *logger.Logger
	now            func() time.Time
	stopCh         chan struct{}
	stopOnce       sync.Once
}

// NewPhoneRateLimiter keys budgets by key(phone). Pass the same phone
// normalizer the scheduling engine uses so both agree on patient identity.
func NewPhoneRateLimiter(limit int, window time.Duration, extractor PhoneExtractor, key sanitizer.Strategy, log *logger.Logger) *PhoneRateLimiter {
	if extractor == nil {
		extractor = DefaultPhoneExtractor
	}
	if key == nil {
		key = sanitizer.NormalizePhone
	}
	limiter := &PhoneRateLimiter{
		requests:       make(map[string][]time.Time),
		limit:          limit,
		window:         window,
		phoneExtractor: extractor,
		key:            key,
		log:            log,
		now:            time.Now,
		stopCh:         make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *PhoneRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for phone, timestamps := range rl.requests {
				if len(timestamps) == 0 || now.Sub(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, phone)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *PhoneRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow records a request for phone and reports whether it is within budget.
func (rl *PhoneRateLimiter) Allow(phone string) bool {
	if phone == "" {
		return true
	}
	key := rl.key(phone)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.requests[key][:0]
	for _, ts := range rl.requests[key] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

func PhoneRateLimit(limiter *PhoneRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			phone := limiter.phoneExtractor(r)

			if !limiter.Allow(phone) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFromContext(r.Context()),
					"phone", limiter.key(phone),
					"path", r.URL.Path,
				)
				writeRejection(w, apperrors.RateLimited("Too many requests for this phone number"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// DefaultPhoneExtractor reads the X-Phone-Number header, then falls back to a
// "phone" field in a JSON body (restoring the body for the next handler) and
// finally to a "phone" query parameter.
func DefaultPhoneExtractor(r *http.Request) string {
	if phone := r.Header.Get("X-Phone-Number"); phone != "" {
		return phone
	}

	if r.Body != nil && r.Body != http.NoBody && requiresContentType(r.Method) {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxPhoneProbeBytes))
		rest := r.Body
		r.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(data), rest), rest}

		if err == nil {
			var probe struct {
				Phone string `json:"phone"`
			}
			if json.Unmarshal(data, &probe) == nil && probe.Phone != "" {
				return probe.Phone
			}
		}
	}

	return r.URL.Query().Get("phone")
}
