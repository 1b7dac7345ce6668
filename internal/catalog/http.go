package catalog

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/abduss/filecrypt/internal/category"
	"github.com/abduss/filecrypt/internal/cryptox"
	"github.com/abduss/filecrypt/internal/extcodec"
	"github.com/abduss/filecrypt/internal/file"
	"github.com/abduss/filecrypt/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead allows for boundaries and part headers around the file body.
const multipartOverhead = 1 << 20

// RegisterRoutes mounts the file catalog endpoints under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, service *Service, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	handler := &httpHandler{service: service, log: log}
	group.POST("/upload", handler.uploadFile)
	group.GET("/files", handler.listFiles)
	group.GET("/preview/:id", handler.previewFile)
	group.GET("/decrypt/:id", handler.downloadFile)
	group.DELETE("/delete/:id", handler.deleteFile)
}

type httpHandler struct {
	service *Service
	log     *zap.Logger
}

func (h *httpHandler) uploadFile(c *gin.Context) {
	limit := h.service.MaxFileSize()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			h.fail(c, ErrPayloadTooLarge)
			return
		}
		h.fail(c, ErrMissingFile)
		return
	}
	if fileHeader.Filename == "" {
		h.fail(c, ErrEmptyFilename)
		return
	}
	if fileHeader.Size > limit {
		h.fail(c, ErrPayloadTooLarge)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		h.fail(c, err)
		return
	}

	info, err := h.service.Upload(c.Request.Context(), Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "file encrypted and stored",
		"file":    info,
	})
}

func (h *httpHandler) listFiles(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"files":   result.Files,
		"total":   result.Total,
	})
}

func (h *httpHandler) previewFile(c *gin.Context) {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	p, err := h.service.Preview(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	body := gin.H{"success": true, "type": p.Type, "data": p.Data}
	if p.Notice != "" {
		body["notice"] = p.Notice
	}
	c.JSON(http.StatusOK, body)
}

func (h *httpHandler) downloadFile(c *gin.Context) {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	d, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Filename))
	c.Data(http.StatusOK, d.ContentType, d.Data)
}

func (h *httpHandler) deleteFile(c *gin.Context) {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "file deleted"})
}

// fail writes the error envelope. Server-side failures are logged and
// answered with a generic message.
func (h *httpHandler) fail(c *gin.Context, err error) {
	status, message := classifyError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("correlation_id", logger.CorrelationID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"success": false, "error": message})
}

func classifyError(err error) (int, string) {
	var storageErr *file.StorageError
	switch {
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, ErrPayloadTooLarge.Error()
	case errors.Is(err, ErrMissingFile),
		errors.Is(err, ErrEmptyFilename),
		errors.Is(err, ErrExtensionNotAllowed),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidOrder),
		errors.Is(err, category.ErrUnknownCategory),
		errors.Is(err, extcodec.ErrInvalidExtension):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, file.ErrFileNotFound):
		return http.StatusNotFound, file.ErrFileNotFound.Error()
	case errors.Is(err, cryptox.ErrAuthentication), errors.Is(err, cryptox.ErrKeyUnavailable):
		return http.StatusInternalServerError, cryptox.ErrAuthentication.Error()
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError, "storage failure"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
