package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"image-cropper/internal/media"
	"image-cropper/internal/storage"
	pkgerrors "image-cropper/pkg/errors"
	dto "image-cropper/pkg/models"

	"github.com/gin-gonic/gin"
)

const (
	codeValidation = "VALIDATION_FAILED"
	codeNotFound   = "NOT_FOUND"
)

var statusByCode = map[storage.ErrorCode]int{
	storage.CodeInvalidFormat:      http.StatusBadRequest,
	storage.CodePayloadTooLarge:    http.StatusRequestEntityTooLarge,
	storage.CodeInvalidPayload:     http.StatusUnprocessableEntity,
	storage.CodeStorageUnavailable: http.StatusInternalServerError,
	storage.CodeInvalidTarget:      http.StatusBadRequest,
	storage.CodeConflict:           http.StatusConflict,
	storage.CodeCanceled:           http.StatusRequestTimeout,
	storage.CodeUnknown:            http.StatusInternalServerError,
}

// respondError writes err as a JSON error body with the matching status.
func respondError(c *gin.Context, err error) {
	if ve, ok := pkgerrors.FromError(err); ok {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: ve.Error(), Code: codeValidation, Fields: ve.Errors})
		return
	}
	if errors.Is(err, media.ErrNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error(), Code: codeNotFound})
		return
	}

	code := storage.Code(err)
	status := statusByCode[code]
	if status >= http.StatusInternalServerError {
		log.Printf("Request %s failed: %v", c.GetString(requestIDKey), err)
	}
	c.JSON(status, dto.ErrorResponse{Error: err.Error(), Code: string(code)})
}

// requestOverhead covers the JSON framing, folder, filename and line breaks
// around the data URI in an upload body.
const requestOverhead = 64 << 10

// bindLimitedJSON binds the body into v, reading at most what a data URI of
// maxDecoded bytes can need. maxDecoded <= 0 leaves the body unbounded.
func bindLimitedJSON(c *gin.Context, v interface{}, maxDecoded int64) bool {
	if maxDecoded > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxDecoded/3*4+4+requestOverhead)
	}
	if err := c.ShouldBindJSON(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{
				Error: fmt.Sprintf("%v: request body exceeds %d bytes", storage.ErrPayloadTooLarge, tooLarge.Limit),
				Code:  string(storage.CodePayloadTooLarge),
			})
			return false
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: codeValidation})
		return false
	}
	return true
}
