package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/advanced-rating/internal/platform/ctxutil"
)

const (
	HeaderUpstreamCookie = "X-Upstream-Cookie"
	HeaderReturnTo       = "X-Return-To"
)

// AttachUpstreamContext copies what the page script forwarded for the catalog
// site call into the request context.
func AttachUpstreamContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithUpstreamData(c.Request.Context(), &ctxutil.UpstreamData{
			Cookie:   c.GetHeader(HeaderUpstreamCookie),
			ReturnTo: c.GetHeader(HeaderReturnTo),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// LimitBody caps request bodies at n bytes.
func LimitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
