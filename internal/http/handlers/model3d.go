package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gin-gonic/gin"
	_ "golang.org/x/image/webp"

	"github.com/yungbote/model3d-backend/internal/http/response"
	"github.com/yungbote/model3d-backend/internal/platform/apierr"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
	"github.com/yungbote/model3d-backend/internal/services"
)

// MaxUploadBytes caps the multipart body of uploadPicture.
const MaxUploadBytes = 32 << 20

type Model3DHandler struct {
	log *logger.Logger
	svc services.Model3DService
}

func NewModel3DHandler(log *logger.Logger, svc services.Model3DService) *Model3DHandler {
	return &Model3DHandler{log: log.With("handler", "Model3DHandler"), svc: svc}
}

type urlObject struct {
	URL string `json:"url"`
}

type createTaskResponse struct {
	Success       bool       `json:"success"`
	Message       string     `json:"message"`
	TaskID        *string    `json:"taskId"`
	ImageURL      string     `json:"imageUrl"`
	ModelMesh     *urlObject `json:"modelMesh"`
	RenderedImage *urlObject `json:"renderedImage"`
}

type uploadPictureResponse struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message"`
	PublicImageURL *string `json:"publicImageUrl"`
}

type generationRecordResponse struct {
	ID               string    `json:"id"`
	AnimalID         uint      `json:"animalId"`
	AnimalName       string    `json:"animalName"`
	State            string    `json:"state"`
	PhotoOriginalURL *string   `json:"photoOriginalUrl"`
	URLModelo        *string   `json:"urlModelo"`
	TaskID           *string   `json:"taskId"`
	FailureReason    string    `json:"failureReason,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func toURLObject(p *string) *urlObject {
	if p == nil || *p == "" {
		return nil
	}
	return &urlObject{URL: *p}
}

// POST /model3d-animal/createTaskV25?image_url=&animal_id=
func (h *Model3DHandler) CreateTaskV25(c *gin.Context) {
	imageURL := firstNonEmpty(c.Query("image_url"), c.PostForm("image_url"))
	rawAnimalID := firstNonEmpty(c.Query("animal_id"), c.PostForm("animal_id"))

	var animalID *uint
	if rawAnimalID != "" {
		id, err := parseAnimalID(rawAnimalID)
		if err != nil {
			c.JSON(http.StatusBadRequest, createTaskResponse{
				Success:  false,
				Message:  err.Error(),
				ImageURL: imageURL,
			})
			return
		}
		animalID = &id
	}

	res, err := h.svc.CreateTask(c.Request.Context(), imageURL, animalID)
	status := http.StatusOK
	if err != nil {
		_ = c.Error(err)
		status = response.StatusFor(err)
	}
	c.JSON(status, createTaskResponse{
		Success:       res.Success,
		Message:       res.Message,
		TaskID:        res.TaskID,
		ImageURL:      res.ImageURL,
		ModelMesh:     toURLObject(res.MeshURL),
		RenderedImage: toURLObject(res.PreviewURL),
	})
}

// POST /model3d-animal/uploadPicture (multipart "file")
func (h *Model3DHandler) UploadPicture(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.uploadFailed(c, apierr.Validation("file_too_large", fmt.Sprintf("file exceeds %d bytes", MaxUploadBytes)))
			return
		}
		h.uploadFailed(c, apierr.Validation("file_required", "file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.uploadFailed(c, apierr.New(apierr.KindInternal, "file_open", fmt.Errorf("open upload: %w", err)))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		h.uploadFailed(c, apierr.New(apierr.KindInternal, "file_read", fmt.Errorf("read upload: %w", err)))
		return
	}

	if len(data) > 0 {
		_, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			h.uploadFailed(c, apierr.Validation("file_not_image", "file is not a supported image (jpeg, png, gif, webp)"))
			return
		}
		h.log.Debug("Upload sniffed", "filename", fh.Filename, "format", format, "bytes", len(data))
	}

	url, err := h.svc.PublishAndGetURL(c.Request.Context(), fh.Filename, data)
	if err != nil {
		h.uploadFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, uploadPictureResponse{
		Success:        true,
		Message:        services.MessageImagePublished,
		PublicImageURL: &url,
	})
}

func (h *Model3DHandler) uploadFailed(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(response.StatusFor(err), uploadPictureResponse{
		Success: false,
		Message: err.Error(),
	})
}

// GET /model3d-animal/animal/:animalId
func (h *Model3DHandler) GetByAnimal(c *gin.Context) {
	id, err := parseAnimalID(c.Param("animalId"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	view, err := h.svc.GetByAnimal(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, generationRecordResponse{
		ID:               view.ID.String(),
		AnimalID:         view.AnimalID,
		AnimalName:       view.AnimalName,
		State:            view.State,
		PhotoOriginalURL: view.PhotoOriginalURL,
		URLModelo:        view.MeshURL,
		TaskID:           view.TaskID,
		FailureReason:    view.FailureReason,
		CreatedAt:        view.CreatedAt,
		UpdatedAt:        view.UpdatedAt,
	})
}

func parseAnimalID(raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, apierr.Validation("invalid_animal_id", fmt.Sprintf("animal_id must be a positive integer, got %q", raw))
	}
	return uint(id), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
