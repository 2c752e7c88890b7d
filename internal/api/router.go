package api

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"image-cropper/internal/config"
	"image-cropper/internal/storage"

	"github.com/gin-gonic/gin"
)

// Router holds everything the HTTP surface is built from.
type Router struct {
	Config  *config.Config
	Service MediaService
	// Events upgrades /ws connections; nil disables the route.
	Events http.HandlerFunc
}

// Engine builds the gin engine with middleware and all API routes.
func (rt *Router) Engine() *gin.Engine {
	r := gin.Default()
	r.Use(RequestID(), CORS())

	if rt.Config.StorageRoot != "" {
		if mount, ok := staticMount(rt.Config.PublicBaseURL); ok {
			r.Static(mount, rt.Config.StorageRoot)
		} else {
			log.Printf("Not serving %s locally, public base URL is %q", rt.Config.StorageRoot, rt.Config.PublicBaseURL)
		}
	}
	if rt.Events != nil {
		r.GET("/ws", gin.WrapF(rt.Events))
	}

	limits := make(map[storage.Kind]int64)
	for kind, preset := range rt.Config.Presets() {
		limits[kind] = preset.MaxSize
	}
	uploadHandler := NewUploadHandler(rt.Service, rt.Config.AllowedTypes, limits)
	mediaHandler := NewMediaHandler(rt.Service)
	cropperHandler := NewCropperHandler(rt.Config, "/api/images")

	apiGroup := r.Group("/api")
	{
		// Upload Routes
		apiGroup.POST("/images", uploadHandler.UploadImage)
		apiGroup.POST("/videos", uploadHandler.UploadVideo)
		apiGroup.POST("/audio", uploadHandler.UploadAudio)
		apiGroup.POST("/files", uploadHandler.UploadFile)

		// Catalogue Routes
		apiGroup.GET("/media", mediaHandler.ListMedia)
		apiGroup.GET("/media/:id", mediaHandler.GetMedia)
		apiGroup.DELETE("/media/:id", mediaHandler.DeleteMedia)
		apiGroup.GET("/storage/files", mediaHandler.ListFiles)

		// Cropper Routes
		apiGroup.GET("/cropper/config", cropperHandler.GetConfig)
		apiGroup.POST("/images/inspect", cropperHandler.InspectImage)
	}

	return r
}

// staticMount returns the route that serves stored files for a public base
// URL. Absolute URLs contribute their path. A base without a path, or one
// that would shadow the API, is not served locally.
func staticMount(base string) (string, bool) {
	u, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	p := strings.TrimRight(u.Path, "/")
	if p == "" || strings.ContainsAny(p, ":*") {
		return "", false
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	for _, reserved := range []string{"/api", "/ws"} {
		if p == reserved || strings.HasPrefix(p, reserved+"/") {
			return "", false
		}
	}
	return p, true
}
