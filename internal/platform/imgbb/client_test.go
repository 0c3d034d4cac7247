package imgbb

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yungbote/model3d-backend/internal/platform/apierr"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	c := New(logger.Nop(), Config{APIKey: "k", BaseURL: srv.URL}, nil)
	return c, &calls
}

func TestPublishReturnsDataURL(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1/upload" {
			t.Errorf("path: want=/1/upload got=%s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "k" {
			t.Errorf("key: want=k got=%s", r.URL.Query().Get("key"))
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if got := r.PostForm.Get("image"); got != base64.StdEncoding.EncodeToString(payload) {
			t.Errorf("image: unexpected encoding %q", got)
		}
		if got := r.PostForm.Get("name"); got != "dog" {
			t.Errorf("name: want=dog got=%q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"url":"https://i.ibb.co/x/dog.png"},"success":true,"status":200}`))
	})

	got, err := c.Publish(context.Background(), "dog.png", payload)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got != "https://i.ibb.co/x/dog.png" {
		t.Fatalf("url: want=%q got=%q", "https://i.ibb.co/x/dog.png", got)
	}
}

func TestPublishMissingURLIsPublishingError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{},"success":true}`))
	})

	_, err := c.Publish(context.Background(), "a.jpg", []byte("x"))
	if apierr.KindOf(err) != apierr.KindUpstreamPublishing {
		t.Fatalf("kind: want=%q got=%q (%v)", apierr.KindUpstreamPublishing, apierr.KindOf(err), err)
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Raw != `{"data":{},"success":true}` {
		t.Fatalf("raw reply not carried: %+v", ae)
	}
}

func TestPublishNonJSONIsPublishingError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	_, err := c.Publish(context.Background(), "a.jpg", []byte("x"))
	if apierr.CodeOf(err) != "imgbb_invalid_json" {
		t.Fatalf("code: want=imgbb_invalid_json got=%q", apierr.CodeOf(err))
	}
}

func TestPublishHTTPErrorIsPublishingError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API v1 key."}}`))
	})

	_, err := c.Publish(context.Background(), "a.jpg", []byte("x"))
	if apierr.KindOf(err) != apierr.KindUpstreamPublishing {
		t.Fatalf("kind: want=%q got=%q", apierr.KindUpstreamPublishing, apierr.KindOf(err))
	}
}

func TestPublishOversizedReplyIsPublishingError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"url":"https://i.ibb.co/` + strings.Repeat("x", 1<<20) + `"}}`))
	})

	_, err := c.Publish(context.Background(), "a.jpg", []byte("x"))
	if apierr.KindOf(err) != apierr.KindUpstreamPublishing {
		t.Fatalf("kind: want=%q got=%q", apierr.KindUpstreamPublishing, apierr.KindOf(err))
	}
	if apierr.CodeOf(err) != "imgbb_reply_too_large" {
		t.Fatalf("code: want=imgbb_reply_too_large got=%q", apierr.CodeOf(err))
	}
}

func TestPublishWithoutKeyMakesNoCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()
	c := New(logger.Nop(), Config{BaseURL: srv.URL}, nil)

	_, err := c.Publish(context.Background(), "a.jpg", []byte("x"))
	if apierr.KindOf(err) != apierr.KindConfiguration {
		t.Fatalf("kind: want=%q got=%q", apierr.KindConfiguration, apierr.KindOf(err))
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("calls: want=0 got=%d", calls)
	}
}

func TestPublishEmptyDataMakesNoCall(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.Publish(context.Background(), "a.jpg", nil)
	if apierr.KindOf(err) != apierr.KindValidation {
		t.Fatalf("kind: want=%q got=%q", apierr.KindValidation, apierr.KindOf(err))
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Fatalf("calls: want=0 got=%d", *calls)
	}
}
