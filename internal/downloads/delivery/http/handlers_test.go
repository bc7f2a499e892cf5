package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/snapsaver/media-downloader/internal/downloads"
	"github.com/snapsaver/media-downloader/internal/models"
	"github.com/snapsaver/media-downloader/pkg/utils"
)

type nopLogger struct{}

func (nopLogger) InitLogger()                          {}
func (nopLogger) Debug(args ...interface{})            {}
func (nopLogger) Debugf(t string, args ...interface{}) {}
func (nopLogger) Info(args ...interface{})             {}
func (nopLogger) Infof(t string, args ...interface{})  {}
func (nopLogger) Warn(args ...interface{})             {}
func (nopLogger) Warnf(t string, args ...interface{})  {}
func (nopLogger) Error(args ...interface{})            {}
func (nopLogger) Errorf(t string, args ...interface{}) {}
func (nopLogger) Fatal(args ...interface{})            {}
func (nopLogger) Fatalf(t string, args ...interface{}) {}

type stubUseCase struct {
	job         *models.DownloadJob
	createErr   error
	getErr      error
	stream      *models.ArtifactStream
	artifactErr error
	gotRange    string
}

func (s *stubUseCase) CreateDownload(ctx context.Context, input *models.DownloadInput) (*models.DownloadJob, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.job, nil
}

func (s *stubUseCase) GetDownload(ctx context.Context, jobID uuid.UUID) (*models.DownloadJob, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.job, nil
}

func (s *stubUseCase) ListDownloads(ctx context.Context, pq *utils.Pagination) (*models.DownloadList, error) {
	list := &models.DownloadList{}
	if s.job != nil {
		list.Downloads = append(list.Downloads, s.job)
		list.Total = 1
	}
	return list, nil
}

func (s *stubUseCase) GetArtifact(ctx context.Context, jobID uuid.UUID, rangeHeader string) (*models.ArtifactStream, error) {
	s.gotRange = rangeHeader
	if s.artifactErr != nil {
		return nil, s.artifactErr
	}
	return s.stream, nil
}

func (s *stubUseCase) GetArtifactURL(ctx context.Context, jobID uuid.UUID) (string, error) {
	if s.artifactErr != nil {
		return "", s.artifactErr
	}
	return "https://artifacts.test/" + jobID.String() + "?signed", nil
}

func (s *stubUseCase) ListPlatforms(ctx context.Context) *models.PlatformList {
	return &models.PlatformList{Platforms: []models.PlatformInfo{
		{Name: models.PlatformTikTok, DisplayName: "TikTok"},
	}}
}

func callHandler(h echo.HandlerFunc, req *http.Request, pathParam ...string) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(pathParam) == 2 {
		c.SetParamNames(pathParam[0])
		c.SetParamValues(pathParam[1])
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func sampleJob() *models.DownloadJob {
	return &models.DownloadJob{
		JobID:    uuid.New(),
		URL:      "https://www.tiktok.com/@user/video/1",
		Platform: models.PlatformTikTok,
		Quality:  models.QualityBest,
		Status:   models.JobStatusQueued,
	}
}

func TestCreateDownloadHandler(t *testing.T) {
	uc := &stubUseCase{job: sampleJob()}
	h := NewDownloadsHandler(uc, nopLogger{})

	body := `{"url":"https://www.tiktok.com/@user/video/1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/download", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := callHandler(h.CreateDownload(), req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var got models.DownloadJob
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != models.JobStatusQueued {
		t.Errorf("status field = %s, want %s", got.Status, models.JobStatusQueued)
	}
}

func TestCreateDownloadHandlerUnsupportedPlatform(t *testing.T) {
	uc := &stubUseCase{createErr: downloads.ErrUnsupportedPlatform}
	h := NewDownloadsHandler(uc, nopLogger{})

	body := `{"url":"https://vimeo.com/1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/download", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := callHandler(h.CreateDownload(), req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Unsupported platform") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCreateDownloadHandlerInfrastructureFailure(t *testing.T) {
	uc := &stubUseCase{createErr: errors.New(`pq: connection refused`)}
	h := NewDownloadsHandler(uc, nopLogger{})

	body := `{"url":"https://www.tiktok.com/@user/video/1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/download", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := callHandler(h.CreateDownload(), req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 for an infrastructure failure", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "pq:") {
		t.Errorf("body %s leaks the internal error", rec.Body.String())
	}
}

func TestCreateDownloadHandlerInvalidInput(t *testing.T) {
	uc := &stubUseCase{createErr: fmt.Errorf("%w: unknown quality %q", downloads.ErrInvalidInput, "8k")}
	h := NewDownloadsHandler(uc, nopLogger{})

	body := `{"url":"https://www.tiktok.com/@user/video/1","quality":"8k"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/download", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := callHandler(h.CreateDownload(), req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for invalid input", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "quality") {
		t.Errorf("body %s does not tell the client what was wrong", rec.Body.String())
	}
}

func TestCreateDownloadHandlerMalformedBody(t *testing.T) {
	h := NewDownloadsHandler(&stubUseCase{}, nopLogger{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/download", strings.NewReader("{broken"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := callHandler(h.CreateDownload(), req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetDownloadByIDHandler(t *testing.T) {
	job := sampleJob()
	h := NewDownloadsHandler(&stubUseCase{job: job}, nopLogger{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/download/"+job.JobID.String(), nil)
	rec := callHandler(h.GetDownloadByID(), req, "download_id", job.JobID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = callHandler(h.GetDownloadByID(), httptest.NewRequest(http.MethodGet, "/api/v1/download/nope", nil), "download_id", "nope")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d for malformed id, want 400", rec.Code)
	}

	missing := NewDownloadsHandler(&stubUseCase{getErr: downloads.ErrNotFound}, nopLogger{})
	id := uuid.New().String()
	rec = callHandler(missing.GetDownloadByID(), httptest.NewRequest(http.MethodGet, "/api/v1/download/"+id, nil), "download_id", id)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d for unknown id, want 404", rec.Code)
	}
}

func TestGetFileHandler(t *testing.T) {
	uc := &stubUseCase{stream: &models.ArtifactStream{
		Body:          io.NopCloser(strings.NewReader("media bytes")),
		ContentType:   "video/mp4",
		ContentLength: 11,
		FileName:      `weird"name.mp4`,
	}}
	h := NewDownloadsHandler(uc, nopLogger{})

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/"+id, nil)
	rec := callHandler(h.GetFile(), req, "download_id", id)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Accept-Ranges") != "bytes" {
		t.Error("Accept-Ranges header missing")
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment;") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if strings.Contains(cd, `weird"name`) {
		t.Errorf("Content-Disposition %q not sanitized", cd)
	}
	if rec.Body.String() != "media bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestGetFileHandlerRangeRequest(t *testing.T) {
	uc := &stubUseCase{stream: &models.ArtifactStream{
		Body:          io.NopCloser(strings.NewReader("bytes")),
		ContentType:   "video/mp4",
		ContentLength: 5,
		ContentRange:  "bytes 0-4/11",
	}}
	h := NewDownloadsHandler(uc, nopLogger{})

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/"+id, nil)
	req.Header.Set("Range", "bytes=0-4")
	rec := callHandler(h.GetFile(), req, "download_id", id)

	if uc.gotRange != "bytes=0-4" {
		t.Errorf("range header %q not passed through", uc.gotRange)
	}
	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if rec.Header().Get("Content-Range") != "bytes 0-4/11" {
		t.Errorf("Content-Range = %q", rec.Header().Get("Content-Range"))
	}
}

func TestGetFileHandlerNotReady(t *testing.T) {
	for _, cause := range []error{downloads.ErrNotFound, downloads.ErrNotCompleted} {
		h := NewDownloadsHandler(&stubUseCase{artifactErr: cause}, nopLogger{})
		id := uuid.New().String()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/files/"+id, nil)
		rec := callHandler(h.GetFile(), req, "download_id", id)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d for %v, want 404", rec.Code, cause)
		}
	}
}

func TestGetFileURLHandler(t *testing.T) {
	h := NewDownloadsHandler(&stubUseCase{}, nopLogger{})

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/"+id+"/url", nil)
	rec := callHandler(h.GetFileURL(), req, "download_id", id)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(body["url"], id) {
		t.Errorf("url = %q does not reference the job", body["url"])
	}

	pending := NewDownloadsHandler(&stubUseCase{artifactErr: downloads.ErrNotCompleted}, nopLogger{})
	rec = callHandler(pending.GetFileURL(), httptest.NewRequest(http.MethodGet, "/api/v1/files/"+id+"/url", nil), "download_id", id)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d for pending job, want 404", rec.Code)
	}
}

func TestListPlatformsHandler(t *testing.T) {
	h := NewDownloadsHandler(&stubUseCase{}, nopLogger{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/platforms", nil)
	rec := callHandler(h.ListPlatforms(), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var list models.PlatformList
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(list.Platforms) == 0 {
		t.Fatal("platform list is empty")
	}
}
