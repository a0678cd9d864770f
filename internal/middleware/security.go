package middleware

import "net/http"

// SecureHeaders sets response headers for a JSON API consumed by a
// browser console. HSTS is only sent when hsts is true.
func SecureHeaders(hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			if hsts {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			// Customer records carry personal data. List revalidation uses
			// ETag, which no-cache still permits.
			h.Set("Cache-Control", "no-cache, private")

			next.ServeHTTP(w, r)
		})
	}
}
