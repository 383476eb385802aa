package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	PostsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatube_posts_created_total",
		Help: "Total posts published",
	})

	PostsEdited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatube_posts_edited_total",
		Help: "Total post edits saved",
	})

	CommentsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatube_comments_created_total",
		Help: "Total comments added",
	})

	Follows = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatube_follows_total",
		Help: "Total follow edges created",
	})

	Unfollows = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatube_unfollows_total",
		Help: "Total follow edges removed",
	})

	Signups = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatube_signups_total",
		Help: "Total successful signups",
	})

	LoginSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatube_login_success_total",
		Help: "Total successful login attempts",
	})

	LoginFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_login_failure_total",
		Help: "Total failed login attempts",
	}, []string{"reason"})

	CacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_page_cache_hits_total",
		Help: "Page cache hits by key prefix",
	}, []string{"prefix"})
)

func init() {
	prometheus.MustRegister(
		RequestDuration,
		PostsCreated,
		PostsEdited,
		CommentsCreated,
		Follows,
		Unfollows,
		Signups,
		LoginSuccess,
		LoginFailure,
		CacheHits,
	)
}

// Middleware records request timing by route template so path parameters do
// not explode label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		RequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus exposition endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
