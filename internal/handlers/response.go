package handler

import "github.com/gin-gonic/gin"

// Standard response envelope. _meta must stay free of timestamps on the
// mock endpoints so identical queries produce byte-identical bodies.
func respondOK(c *gin.Context, data interface{}, meta gin.H) {
	c.JSON(200, gin.H{"success": true, "data": data, "_meta": meta})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}
