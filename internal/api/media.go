package api

import (
	"net/http"
	"strconv"

	"image-cropper/internal/media"
	"image-cropper/internal/models"
	"image-cropper/internal/storage"
	dto "image-cropper/pkg/models"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	Service MediaService
}

func NewMediaHandler(service MediaService) *MediaHandler {
	return &MediaHandler{Service: service}
}

// ListMedia lists catalogue records, newest first
func (h *MediaHandler) ListMedia(c *gin.Context) {
	filter := media.Filter{
		Folder: c.Query("folder"),
		Kind:   c.Query("kind"),
	}
	if filter.Kind != "" {
		if _, ok := storage.ParseKind(filter.Kind); !ok {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unknown kind " + filter.Kind, Code: codeValidation})
			return
		}
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filter.Offset = offset
	}

	records, err := h.Service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.Media, 0, len(records))
	for i := range records {
		out = append(out, h.toDTO(&records[i], false))
	}
	c.JSON(http.StatusOK, out)
}

// GetMedia returns one record and whether its file is still on disk
func (h *MediaHandler) GetMedia(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	record, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toDTO(record, true))
}

// DeleteMedia removes the stored file and its record
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.Service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Media deleted"})
}

// ListFiles lists the files stored directly in a folder
func (h *MediaHandler) ListFiles(c *gin.Context) {
	files, err := h.Service.Files(c.Query("folder"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folder": c.Query("folder"), "files": files})
}

func (h *MediaHandler) toDTO(m *models.Media, checkExists bool) dto.Media {
	out := dto.Media{
		ID:           m.ID,
		Path:         m.Path,
		URL:          h.Service.URL(m.Path),
		Kind:         m.Kind,
		Folder:       m.Folder,
		Filename:     m.Filename,
		MimeType:     mimeOf(m),
		DeclaredMime: m.DeclaredMime,
		Extension:    m.Extension,
		Size:         m.Size,
		CreatedAt:    m.CreatedAt,
	}
	if checkExists {
		exists := h.Service.Exists(m.Path)
		out.Exists = &exists
	}
	return out
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid media ID", Code: codeValidation})
		return 0, false
	}
	return uint(id), true
}
