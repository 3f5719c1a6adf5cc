package middleware

import (
	"net/http"
	"path"
	"strings"
)

// Normalize 统一代理转发过来的请求，使路由只看到一种路径写法
//   - "/api/collections/blog/ " and "/api//collections/blog/" both route as "/api/collections/blog"
//   - X-Forwarded-Proto/Host restore scheme and host; chained proxies append
//     values, the first one is the client-facing hop
func Normalize() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p := cleanPath(r.URL.Path); p != r.URL.Path {
				r.URL.Path = p
				// RawPath is only valid while it still encodes Path
				r.URL.RawPath = ""
			}

			switch proto := firstForwarded(r.Header.Get("X-Forwarded-Proto")); proto {
			case "http", "https":
				r.URL.Scheme = proto
			}
			if host := firstForwarded(r.Header.Get("X-Forwarded-Host")); host != "" {
				r.Host = host
			}
			next.ServeHTTP(w, r)
		})
	}
}

// cleanPath trims whitespace, collapses repeated slashes and drops a
// trailing slash. Dot segments are resolved by path.Clean as well.
func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func firstForwarded(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.ToLower(strings.TrimSpace(v))
}
