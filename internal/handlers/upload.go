// internal/handlers/upload.go
package handlers

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dropshoplabs/dropshop-backend/internal/storage"
	"github.com/dropshoplabs/dropshop-backend/internal/utils"
)

// maxImageSize caps product and shop images at 5 MB.
const maxImageSize = 5 << 20

type UploadHandler struct {
	blobs storage.BlobStore
}

func NewUploadHandler(blobs storage.BlobStore) *UploadHandler {
	return &UploadHandler{blobs: blobs}
}

// POST /uploads/images
func (h *UploadHandler) UploadImage(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "Missing image file", nil)
		return
	}
	if fileHeader.Size > maxImageSize {
		utils.BadRequestResponse(c, "Image exceeds 5MB limit", nil)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		utils.BadRequestResponse(c, "File must be an image", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Could not read image file", err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	url, err := h.blobs.Upload(ownerID, fileHeader.Filename, data, contentType)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, gin.H{"url": url})
}
