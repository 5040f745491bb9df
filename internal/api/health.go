package api

import (
	"github.com/gin-gonic/gin"
)

// Health reports liveness, the active backend and the collection sizes.
// No authentication, it backs load-balancer checks.
func (h *Handler) Health(c *gin.Context) {
	ok(c, gin.H{
		"status":      "ok",
		"backend":     h.Backend,
		"collections": h.Store.Counts(),
	})
}
