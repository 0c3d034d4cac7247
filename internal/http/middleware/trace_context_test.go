package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/model3d-backend/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var td *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		td = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if td == nil || td.RequestID != "req-1" || td.TraceID == "" {
		t.Fatalf("trace data: %+v", td)
	}
	if got := rec.Header().Get(HeaderRequestID); got != "req-1" {
		t.Fatalf("request id header: got=%q", got)
	}
	if got := rec.Header().Get(HeaderTraceID); got != td.TraceID {
		t.Fatalf("trace id header: want=%q got=%q", td.TraceID, got)
	}
}

type recordingAPIMetrics struct {
	inflight int
	routes   []string
	statuses []string
}

func (m *recordingAPIMetrics) APIInflightInc() { m.inflight++ }
func (m *recordingAPIMetrics) APIInflightDec() { m.inflight-- }
func (m *recordingAPIMetrics) ObserveAPI(method, route, status string, seconds float64) {
	m.routes = append(m.routes, route)
	m.statuses = append(m.statuses, status)
}

func TestMetricsRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := &recordingAPIMetrics{}
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/model3d-animal/animal/:animalId", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/model3d-animal/animal/42", nil))

	if len(m.routes) != 1 || m.routes[0] != "/model3d-animal/animal/:animalId" || m.statuses[0] != "404" {
		t.Fatalf("observed: routes=%v statuses=%v", m.routes, m.statuses)
	}
	if m.inflight != 0 {
		t.Fatalf("inflight: want=0 got=%d", m.inflight)
	}
}
