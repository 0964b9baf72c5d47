package handlers

import "github.com/gin-gonic/gin"

func Health(c *gin.Context) {
	c.JSON(200, gin.H{
		"service": "ToDoList API",
		"version": "1.0.0",
		"status":  "operational",
	})
}
