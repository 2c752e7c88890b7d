package api

import (
	"net/http"

	"image-cropper/internal/config"
	"image-cropper/internal/imageinfo"
	"image-cropper/internal/storage"
	dto "image-cropper/pkg/models"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
)

type CropperHandler struct {
	Config    *config.Config
	UploadURL string
}

func NewCropperHandler(cfg *config.Config, uploadURL string) *CropperHandler {
	return &CropperHandler{Config: cfg, UploadURL: uploadURL}
}

// GetConfig serves the widget configuration
func (h *CropperHandler) GetConfig(c *gin.Context) {
	ratios := make([]dto.Ratio, 0, len(h.Config.Ratios))
	for _, r := range h.Config.Ratios {
		ratios = append(ratios, dto.Ratio{Label: r.Label, Value: r.Value})
	}

	c.JSON(http.StatusOK, dto.CropperConfig{
		UploadURL:      h.UploadURL,
		Ratios:         ratios,
		EnableRatio:    h.Config.EnableRatio,
		EnableCrop:     h.Config.EnableCrop,
		DefaultFormat:  h.Config.DefaultFormat,
		DefaultQuality: h.Config.DefaultQuality,
		MaxFileSize:    h.Config.Presets()[storage.KindImage].MaxSize,
		AllowedTypes:   h.Config.AllowedTypes,
		Formats:        imageinfo.SupportedFormats(),
	})
}

type inspectRequest struct {
	Image string `json:"image"`
}

func (req *inspectRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Image, validation.Required),
	)
}

// InspectImage reports the format and dimensions of an image data URI
func (h *CropperHandler) InspectImage(c *gin.Context) {
	maxSize := h.Config.Presets()[storage.KindImage].MaxSize

	var req inspectRequest
	if !bindLimitedJSON(c, &req, maxSize) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	info, err := imageinfo.Inspect(req.Image, maxSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
