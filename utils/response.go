package utils

import "github.com/gin-gonic/gin"

// Every endpoint answers with the same envelope: {success, data, message}.

func RespondSuccess(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, gin.H{
		"success": true,
		"data":    data,
		"message": message,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"data":    nil,
		"message": message,
	})
}
