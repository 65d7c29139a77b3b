package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tr4cks/picled/led"
)

func LEDStateMiddleware(controller *led.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := controller.State()

		c.Set("led", state.On)
		c.Set("status", state.Status())
		c.Set("button", state.Button())

		c.Next()
	}
}

func ConditionalMiddleware(predicate func(*gin.Context) bool, middleware gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if predicate(c) {
			middleware(c)
		} else {
			c.Next()
		}
	}
}

// AuthMiddleware requires BasicAuth only when credentials are configured.
func AuthMiddleware(config *Config) gin.HandlerFunc {
	if config.Username == "" {
		return func(c *gin.Context) { c.Next() }
	}
	return ConditionalMiddleware(
		func(c *gin.Context) bool { return c.Request.Method != http.MethodGet },
		gin.BasicAuth(gin.Accounts{config.Username: config.Password}),
	)
}
