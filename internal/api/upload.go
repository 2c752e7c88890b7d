package api

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"image-cropper/internal/datauri"
	"image-cropper/internal/models"
	"image-cropper/internal/storage"
	dto "image-cropper/pkg/models"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	folderPattern   = regexp.MustCompile(`^[A-Za-z0-9_./-]+$`)
	filenamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

type uploadRequest struct {
	Image    string `json:"image"`
	Data     string `json:"data"`
	Folder   string `json:"folder"`
	Filename string `json:"filename"`
}

// dataURI returns the payload field; the widget posts "image", other clients "data".
func (req *uploadRequest) dataURI() string {
	if req.Data != "" {
		return req.Data
	}
	return req.Image
}

func noParentSegments(value interface{}) error {
	s, _ := value.(string)
	for _, seg := range strings.Split(s, "/") {
		if seg == ".." {
			return errors.New("must not contain .. segments")
		}
	}
	return nil
}

func (req *uploadRequest) Validate() error {
	req.Data = req.dataURI()
	return validation.ValidateStruct(req,
		validation.Field(&req.Data, validation.Required),
		validation.Field(&req.Folder, validation.Match(folderPattern), validation.By(noParentSegments)),
		validation.Field(&req.Filename, validation.Match(filenamePattern), validation.By(noParentSegments)),
	)
}

type UploadHandler struct {
	Service      MediaService
	AllowedTypes []string
	// Limits holds the decoded-size ceiling per kind; it bounds the body.
	Limits map[storage.Kind]int64
}

func NewUploadHandler(service MediaService, allowedTypes []string, limits map[storage.Kind]int64) *UploadHandler {
	return &UploadHandler{Service: service, AllowedTypes: allowedTypes, Limits: limits}
}

func (h *UploadHandler) UploadImage(c *gin.Context) { h.upload(c, storage.KindImage) }
func (h *UploadHandler) UploadVideo(c *gin.Context) { h.upload(c, storage.KindVideo) }
func (h *UploadHandler) UploadAudio(c *gin.Context) { h.upload(c, storage.KindAudio) }
func (h *UploadHandler) UploadFile(c *gin.Context)  { h.upload(c, storage.KindFile) }

func (h *UploadHandler) upload(c *gin.Context, kind storage.Kind) {
	var req uploadRequest
	if !bindLimitedJSON(c, &req, h.Limits[kind]) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	if kind == storage.KindImage {
		if err := h.checkAllowed(req.Data); err != nil {
			respondError(c, err)
			return
		}
	}

	record, err := h.Service.Upload(c.Request.Context(), kind, req.Data, req.Folder, req.Filename)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.UploadResponse{
		Success:  true,
		ID:       record.ID,
		Path:     record.Path,
		URL:      h.Service.URL(record.Path),
		MimeType: mimeOf(record),
		Size:     record.Size,
	})
}

// checkAllowed enforces the configured image MIME allow-list. An empty list
// allows everything.
func (h *UploadHandler) checkAllowed(dataURI string) error {
	if len(h.AllowedTypes) == 0 {
		return nil
	}
	uri, err := datauri.Parse(dataURI)
	if err != nil {
		return err
	}
	if !slices.Contains(h.AllowedTypes, uri.MimeType()) {
		return fmt.Errorf("%w: %s is not an allowed image type", storage.ErrInvalidFormat, uri.MimeType())
	}
	return nil
}

// mimeOf prefers the sniffed type over the declared one.
func mimeOf(m *models.Media) string {
	if m.DetectedMime != "" {
		return m.DetectedMime
	}
	return m.DeclaredMime
}
