package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"time"
	"yatube/internal/monitoring"
	"yatube/internal/utils"

	"github.com/gin-gonic/gin"
)

type cachedPage struct {
	Status      int
	ContentType string
	Body        []byte
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// PageCacheKey is the cache key of a page for the given user. Anonymous
// visitors share user id 0.
func PageCacheKey(prefix string, userID uint, requestURI string) string {
	return fmt.Sprintf("%s:u%d:%s", prefix, userID, requestURI)
}

// CachePage serves successful GET responses from the shared cache for ttl.
// Entries are not invalidated by writes; they only expire.
func CachePage(ttl time.Duration, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		var userID uint
		if user := CurrentUser(c); user != nil {
			userID = user.ID
		}
		key := PageCacheKey(prefix, userID, c.Request.URL.RequestURI())

		if cached, ok := utils.GetCache().Get(key).(cachedPage); ok {
			monitoring.CacheHits.WithLabelValues(prefix).Inc()
			c.Data(cached.Status, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		if rec.Status() != http.StatusOK {
			return
		}
		utils.GetCache().Set(key, cachedPage{
			Status:      rec.Status(),
			ContentType: rec.Header().Get("Content-Type"),
			Body:        bytes.Clone(rec.body.Bytes()),
		}, ttl)
	}
}
