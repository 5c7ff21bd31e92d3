package hc

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"singular/handler/render"
)

// Handle reports liveness: build version and time since boot.
func Handle(ver string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Handle("/", health(ver, time.Now()))
	return r
}

func health(version string, booted time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, render.H{
			"version": version,
			"uptime":  time.Since(booted).Truncate(time.Millisecond).String(),
		})
	}
}
