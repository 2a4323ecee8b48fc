package mw

import (
	"net/http"
	"strings"

	"github.com/Snehagupta1907/monad-journal/internal/logger"
	"github.com/Snehagupta1907/monad-journal/internal/metrics"
	"github.com/Snehagupta1907/monad-journal/internal/utils"
)

func passthrough(next http.Handler) http.Handler { return next }

func deny(w http.ResponseWriter, r *http.Request, log logger.Logger, rule, subject string) {
	metrics.AccessDenied.WithLabelValues(rule).Inc()
	log.Warn("request denied",
		logger.String("rule", rule),
		logger.String("subject", subject),
		logger.String("path", r.URL.Path))
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

// AllowOnlyCIDRS restricts a route to the listed IPs and CIDRs. An empty list disables the check.
// trustProxy makes the client IP come from proxy headers (e.g., cloudflared).
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		return passthrough
	}
	log.Debug("cidr filter enabled",
		logger.Int("rules", len(allowed)),
		logger.Bool("trust_proxy", trustProxy))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				deny(w, r, log, "cidr", ip)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// EnforceHost restricts a route to the listed Host headers; "*.example.com" matches any subdomain.
// An empty list disables the check.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(allowedHosts) == 0 {
		return passthrough
	}
	patterns := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		patterns = append(patterns, strings.ToLower(strings.TrimSpace(h)))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := strings.ToLower(utils.ParseHostNoPort(r.Host))
			for _, p := range patterns {
				if matchHost(host, p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			deny(w, r, log, "host", r.Host)
		})
	}
}

func matchHost(host, pattern string) bool {
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(suffix, ".") {
		return strings.HasSuffix(host, suffix) && len(host) > len(suffix)
	}
	return host == pattern
}
