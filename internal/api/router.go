package api

import (
	"fmt"
	"log"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/chisomo-phiri/studyhub/docs"

	"github.com/chisomo-phiri/studyhub/internal/api/handlers"
	"github.com/chisomo-phiri/studyhub/internal/api/middleware"
	"github.com/chisomo-phiri/studyhub/internal/config"
	"github.com/rs/cors"
)

func SetupRouter(h *handlers.Handler) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(config.Envs.CorsConfig)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	authMux := http.NewServeMux()
	authMux.HandleFunc("/sign-up", h.RegisterUser)
	authMux.HandleFunc("/login", h.LoginUser)
	authMux.HandleFunc("/logout", h.Logout)
	authMux.HandleFunc("/google/login", h.HandleGoogleLogin)
	authMux.HandleFunc("/google/callback", h.HandleGoogleCallback)

	mainMux.Handle("/api/v1/auth/",
		http.StripPrefix("/api/v1/auth", authMux),
	)

	// ---------- CATALOGUE ROUTES ----------
	// Identity is attached when present; handlers enforce it only in
	// deployments with AUTH_REQUIRED set.
	mainMux.Handle("POST /upload", middleware.OptionalAuth(http.HandlerFunc(h.UploadFile)))
	mainMux.Handle("GET /api/metadata", middleware.OptionalAuth(http.HandlerFunc(h.GetMetadata)))
	mainMux.HandleFunc("GET /files/{id}", h.StreamFile)
	mainMux.HandleFunc("GET /files/{id}/{filename}", h.StreamFile)

	// ---------- NOTIFICATION ROUTES ----------
	mainMux.Handle("POST /save-token", middleware.OptionalAuth(http.HandlerFunc(h.SaveToken)))
	mainMux.Handle("POST /subscribe", middleware.OptionalAuth(http.HandlerFunc(h.Subscribe)))

	// ---------- PROTECTED ROUTES ----------
	mainMux.Handle("DELETE /api/metadata/{id}",
		middleware.AuthMiddleware(http.HandlerFunc(h.DeleteFile)),
	)

	log.Println("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(handler)
	return handler
}
