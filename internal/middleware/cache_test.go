package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func cachedEngine(ttl time.Duration, calls *int) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.Query("as"); id != "" {
			c.Set(CheckUserKey, &models.User{ID: 7})
		}
	})
	r.GET("/", CachePage(ttl, "test_page"), func(c *gin.Context) {
		*calls++
		c.String(http.StatusOK, "render %d", *calls)
	})
	r.GET("/missing", CachePage(ttl, "test_page"), func(c *gin.Context) {
		*calls++
		c.String(http.StatusNotFound, "gone %d", *calls)
	})
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestCachePageServesStoredBody(t *testing.T) {
	utils.GetCache().Purge()
	calls := 0
	r := cachedEngine(time.Minute, &calls)

	first := get(r, "/")
	second := get(r, "/")
	if first.Body.String() != "render 1" || second.Body.String() != "render 1" {
		t.Fatalf("expected cached body, got %q and %q", first.Body.String(), second.Body.String())
	}
	if ct := second.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}

	if body := get(r, "/?page=2").Body.String(); body != "render 2" {
		t.Errorf("query string should be part of the key, got %q", body)
	}
	if body := get(r, "/?as=7").Body.String(); body != "render 3" {
		t.Errorf("user should be part of the key, got %q", body)
	}

	utils.GetCache().Purge()
	if body := get(r, "/").Body.String(); body != "render 4" {
		t.Errorf("expected fresh render after purge, got %q", body)
	}
}

func TestCachePageExpires(t *testing.T) {
	utils.GetCache().Purge()
	calls := 0
	r := cachedEngine(10*time.Millisecond, &calls)

	get(r, "/")
	time.Sleep(20 * time.Millisecond)
	if body := get(r, "/").Body.String(); body != "render 2" {
		t.Errorf("expected expired entry to re-render, got %q", body)
	}
}

func TestCachePageSkipsErrors(t *testing.T) {
	utils.GetCache().Purge()
	calls := 0
	r := cachedEngine(time.Minute, &calls)

	get(r, "/missing")
	w := get(r, "/missing")
	if w.Code != http.StatusNotFound || w.Body.String() != "gone 2" {
		t.Errorf("non-200 responses must not be cached, got %d %q", w.Code, w.Body.String())
	}
}

func TestPageCacheKey(t *testing.T) {
	got := PageCacheKey("index_page", 3, "/?page=2")
	if want := fmt.Sprintf("index_page:u%d:/?page=2", 3); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
