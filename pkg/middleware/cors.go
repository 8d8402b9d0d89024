package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4/middleware"
)

// CORSConfig returns the CORS configuration used by the application.
// Centralised here so that both main.go and tests reference the same
// config. The allowed origins come from configuration; local dashboard
// development is always permitted.
func CORSConfig(allowedOrigins []string) middleware.CORSConfig {
	origins := []string{
		"http://localhost:3000", // Dashboard dev server
		"http://localhost:5173", // Vite dev server
	}
	origins = append(origins, allowedOrigins...)

	return middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowCredentials: true,
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
		},
	}
}
