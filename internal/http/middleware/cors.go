package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS lets the page script on the catalog site reach the local service.
func CORS(origins []string) gin.HandlerFunc {
	allow := origins
	if len(allow) == 0 {
		allow = []string{"https://musicbrainz.org"}
	}
	return cors.New(cors.Config{
		AllowOrigins: allow,
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"X-Requested-With",
			"X-Request-Id",
			HeaderUpstreamCookie,
			HeaderReturnTo,
		},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-Id", "X-Trace-Id"},
		AllowCredentials: true,
	})
}
