// Package testui serves the single-page call analysis dashboard.
package testui

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes serves the embedded dashboard page at basePath
func RegisterRoutes(r gin.IRoutes, basePath string, indexHTML string) {
	if basePath == "" {
		basePath = "/"
	}
	page := []byte(indexHTML)
	serve := func(ctx *gin.Context) {
		ctx.Header("Cache-Control", "no-cache")
		ctx.Data(http.StatusOK, "text/html; charset=utf-8", page)
	}
	r.GET(basePath, serve)
	r.HEAD(basePath, serve)
}
