package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fieldcheck/checklist-api/internal/constants"
	apierrors "github.com/fieldcheck/checklist-api/internal/errors"
	"github.com/fieldcheck/checklist-api/internal/middleware"
	"github.com/fieldcheck/checklist-api/internal/storage"
)

// UploadHandler accepts photo and signature uploads and hands them to
// object storage. Only the returned URL ever reaches the database.
type UploadHandler struct {
	store storage.ObjectStorage
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(store storage.ObjectStorage) *UploadHandler {
	return &UploadHandler{
		store: store,
	}
}

var allowedUploadExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// Upload stores one image file and returns its URL.
func (h *UploadHandler) Upload(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "A file is required")
		return
	}

	if fileHeader.Size > constants.MaxUploadSize {
		apierrors.BadRequest(c, "File exceeds the upload size limit")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := allowedUploadExtensions[ext]; !ok {
		apierrors.BadRequest(c, "Unsupported file type")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apierrors.InternalError(c, "Failed to read upload")
		return
	}
	defer file.Close()

	url, err := h.store.Save(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		apierrors.InternalError(c, "Failed to store upload")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
