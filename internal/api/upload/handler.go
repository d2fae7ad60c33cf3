package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-app/internal/api/apierror"
	"portfolio-app/internal/media"
)

// memoryLimit is how much of a multipart form is held in memory before
// spilling to temp files.
const memoryLimit = 8 << 20

type Handler struct {
	Pipeline *media.Pipeline
	MaxBytes int64
}

func NewHandler(p *media.Pipeline, maxBytes int64) *Handler {
	return &Handler{Pipeline: p, MaxBytes: maxBytes}
}

func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.POST("/upload", h.Upload)
}

// ------------------------------
// POST /upload  multipart: files[], collection_id
// Files run one at a time; a bad file is reported in "failed" and skipped.
// ------------------------------
func (h *Handler) Upload(c *gin.Context) {
	if h.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes)
	}

	if err := c.Request.ParseMultipartForm(memoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload too large"})
			return
		}
		apierror.BadRequest(c, "Invalid multipart form")
		return
	}
	defer c.Request.MultipartForm.RemoveAll()

	headers := c.Request.MultipartForm.File["files"]
	if len(headers) == 0 {
		apierror.BadRequest(c, "No files provided")
		return
	}

	files := make([]media.File, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			apierror.BadRequest(c, fmt.Sprintf("read %s: %v", fh.Filename, err))
			return
		}
		files = append(files, media.File{Name: fh.Filename, Data: data})
	}

	images, failed := h.Pipeline.ProcessBatch(c.Request.Context(), c.PostForm("collection_id"), files)
	if failed == nil {
		failed = []media.Failure{}
	}

	status := http.StatusOK
	if len(images) == 0 {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{
		"images":  images,
		"failed":  failed,
		"message": fmt.Sprintf("%d image(s) uploaded successfully", len(images)),
	})
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
