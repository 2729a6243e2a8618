package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger prints one line per request. Health probes are skipped.
func Logger(skip ...string) gin.HandlerFunc {
	skipped := map[string]bool{}
	for _, p := range skip {
		skipped[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if skipped[c.FullPath()] {
			return
		}

		who := "-"
		if admin, ok := GetAdmin(c); ok {
			who = admin.Email
		}
		log.Printf("[HTTP] request_id=%s method=%s path=%s status=%d bytes=%d latency_ms=%.3f admin=%s",
			GetRequestID(c),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			c.Writer.Size(),
			float64(time.Since(start).Microseconds())/1000.0,
			who,
		)
	}
}
