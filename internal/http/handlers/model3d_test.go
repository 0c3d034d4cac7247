package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/model3d-backend/internal/platform/apierr"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
	"github.com/yungbote/model3d-backend/internal/services"
)

type fakeModel3D struct {
	createCalls  int
	publishCalls int
	gotAnimalID  *uint

	result  services.TaskResult
	err     error
	url     string
	view    *services.GenerationRecordView
	viewErr error
}

func (f *fakeModel3D) CreateTask(ctx context.Context, imageURL string, animalID *uint) (services.TaskResult, error) {
	f.createCalls++
	f.gotAnimalID = animalID
	return f.result, f.err
}

func (f *fakeModel3D) PublishAndGetURL(ctx context.Context, filename string, data []byte) (string, error) {
	f.publishCalls++
	if len(data) == 0 {
		return "", apierr.Validation("file_required", "file is required")
	}
	return f.url, f.err
}

func (f *fakeModel3D) GetByAnimal(ctx context.Context, animalID uint) (*services.GenerationRecordView, error) {
	return f.view, f.viewErr
}

func newTestRouter(svc services.Model3DService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewModel3DHandler(logger.Nop(), svc)
	r := gin.New()
	r.POST("/model3d-animal/createTaskV25", h.CreateTaskV25)
	r.POST("/model3d-animal/uploadPicture", h.UploadPicture)
	r.GET("/model3d-animal/animal/:animalId", h.GetByAnimal)
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestCreateTaskV25Success(t *testing.T) {
	svc := &fakeModel3D{result: services.TaskResult{
		Success:    true,
		Message:    services.MessageTaskCreated,
		TaskID:     strPtr("abc123"),
		ImageURL:   "https://i.ibb.co/x/dog.png",
		MeshURL:    strPtr("https://cdn/mesh.glb"),
		PreviewURL: strPtr("https://cdn/preview.png"),
	}}
	r := newTestRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/model3d-animal/createTaskV25?image_url=https://i.ibb.co/x/dog.png&animal_id=42", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	if svc.gotAnimalID == nil || *svc.gotAnimalID != 42 {
		t.Fatalf("animal id: got=%v", svc.gotAnimalID)
	}
	body := decode(t, rec)
	if body["success"] != true || body["taskId"] != "abc123" {
		t.Fatalf("body: %v", body)
	}
	mesh, _ := body["modelMesh"].(map[string]any)
	if mesh["url"] != "https://cdn/mesh.glb" {
		t.Fatalf("modelMesh: %v", body["modelMesh"])
	}
	preview, _ := body["renderedImage"].(map[string]any)
	if preview["url"] != "https://cdn/preview.png" {
		t.Fatalf("renderedImage: %v", body["renderedImage"])
	}
}

func TestCreateTaskV25FailureOutcomeKeepsShape(t *testing.T) {
	svc := &fakeModel3D{result: services.TaskResult{
		Success:  false,
		Message:  services.MessageTaskNoID,
		ImageURL: "http://x",
	}}
	r := newTestRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/model3d-animal/createTaskV25?image_url=http://x&animal_id=42", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	body := decode(t, rec)
	if body["success"] != false || body["message"] != "Task creation failed, no task identifier in reply" {
		t.Fatalf("body: %v", body)
	}
	for _, k := range []string{"taskId", "modelMesh", "renderedImage"} {
		v, ok := body[k]
		if !ok || v != nil {
			t.Fatalf("%s: want explicit null got %v (present=%v)", k, v, ok)
		}
	}
}

func TestCreateTaskV25ErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "validation", err: apierr.Validation("image_url_required", "image_url is required"), status: http.StatusBadRequest},
		{name: "not found", err: apierr.NotFound("animal_not_found", "animal 9999 not found"), status: http.StatusNotFound},
		{name: "upstream", err: apierr.Newf(apierr.KindUpstream, "tripo_http_status", "boom"), status: http.StatusInternalServerError},
		{name: "configuration", err: apierr.Configuration("tripo_missing_key", "no key"), status: http.StatusInternalServerError},
		{name: "interpretation", err: apierr.Newf(apierr.KindInterpretation, "reply_not_json", "bad"), status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeModel3D{result: services.TaskResult{Message: tc.err.Error()}, err: tc.err}
			r := newTestRouter(svc)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/model3d-animal/createTaskV25?image_url=http://x&animal_id=9999", nil))

			if rec.Code != tc.status {
				t.Fatalf("status: want=%d got=%d", tc.status, rec.Code)
			}
			body := decode(t, rec)
			if body["success"] != false {
				t.Fatalf("success: want=false body=%v", body)
			}
			if _, ok := body["modelMesh"]; !ok {
				t.Fatalf("response shape changed on error: %v", body)
			}
		})
	}
}

func TestCreateTaskV25RejectsBadAnimalID(t *testing.T) {
	svc := &fakeModel3D{}
	r := newTestRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/model3d-animal/createTaskV25?image_url=http://x&animal_id=abc", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", rec.Code)
	}
	if svc.createCalls != 0 {
		t.Fatalf("service calls: want=0 got=%d", svc.createCalls)
	}
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png: %v", err)
	}
	return buf.Bytes()
}

func TestUploadPicture(t *testing.T) {
	svc := &fakeModel3D{url: "https://i.ibb.co/x/dog.png"}
	r := newTestRouter(svc)

	body, ct := multipartBody(t, "file", "dog.png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/model3d-animal/uploadPicture", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if out["success"] != true || out["publicImageUrl"] != "https://i.ibb.co/x/dog.png" {
		t.Fatalf("body: %v", out)
	}
}

func TestUploadPictureRejectsMissingEmptyAndNonImage(t *testing.T) {
	cases := []struct {
		name  string
		field string
		data  []byte
	}{
		{name: "missing", field: ""},
		{name: "empty", field: "file", data: nil},
		{name: "not an image", field: "file", data: []byte("just some text")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeModel3D{url: "https://should-not-be-used"}
			r := newTestRouter(svc)

			body, ct := multipartBody(t, tc.field, "a.png", tc.data)
			req := httptest.NewRequest(http.MethodPost, "/model3d-animal/uploadPicture", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: want=400 got=%d", rec.Code)
			}
			out := decode(t, rec)
			if out["success"] != false {
				t.Fatalf("success: want=false body=%v", out)
			}
			if v, ok := out["publicImageUrl"]; !ok || v != nil {
				t.Fatalf("publicImageUrl: want null got %v", v)
			}
		})
	}
}

func TestGetByAnimal(t *testing.T) {
	id := uuid.New()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeModel3D{view: &services.GenerationRecordView{
		ID:         id,
		AnimalID:   42,
		AnimalName: "Firulais",
		State:      "Generated",
		MeshURL:    strPtr("https://cdn/mesh.glb"),
		CreatedAt:  now,
		UpdatedAt:  now,
	}}
	r := newTestRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/model3d-animal/animal/42", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	out := decode(t, rec)
	if out["id"] != id.String() || out["state"] != "Generated" || out["urlModelo"] != "https://cdn/mesh.glb" || out["animalName"] != "Firulais" {
		t.Fatalf("body: %v", out)
	}
}

func TestGetByAnimalNotFound(t *testing.T) {
	svc := &fakeModel3D{viewErr: apierr.NotFound("generation_record_not_found", "no generation record for animal 7")}
	r := newTestRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/model3d-animal/animal/7", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: want=404 got=%d", rec.Code)
	}
	out := decode(t, rec)
	errObj, _ := out["error"].(map[string]any)
	if errObj["code"] != "generation_record_not_found" {
		t.Fatalf("error body: %v", out)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/model3d-animal/animal/zero", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status: want=400 got=%d", rec.Code)
	}
}
