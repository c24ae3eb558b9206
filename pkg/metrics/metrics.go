package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HTTP middleware metrics plus domain counters, served from a dedicated
// listener so the metrics port can stay off the public surface.

var (
	reqCnt = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "req_total",
		Help: "HTTP requests processed, partitioned by status code, method and route.",
	}, []string{"code", "method", "url"})

	reqDur = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "req_dur_ms",
		Help:    "HTTP request latencies in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"code", "method", "url"})

	// RedemptionsTotal counts successful ledger-tracked promo redemptions.
	RedemptionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promo_redemptions_total",
		Help: "Successful promo code redemptions, partitioned by plan.",
	}, []string{"plan"})

	// TrialRevertsTotal counts accounts reverted by the trial expiration sweep.
	TrialRevertsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trial_reverts_total",
		Help: "Accounts reverted to the free tier by the trial expiration sweep.",
	})
)

type Prometheus struct {
	registry *prometheus.Registry
	log      *zap.SugaredLogger
	addr     string
}

func NewPrometheus(log *zap.SugaredLogger) *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(reqCnt, reqDur, RedemptionsTotal, TrialRevertsTotal)
	return &Prometheus{registry: reg, log: log}
}

func (p *Prometheus) SetListenAddress(addr string) {
	p.addr = addr
}

// Use attaches the HTTP middleware to the engine and starts the metrics
// listener when an address is configured.
func (p *Prometheus) Use(r *gin.Engine) {
	r.Use(p.handlerFunc())
	if p.addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(p.addr, mux); err != nil {
			p.log.Errorf("metrics listener error: %v", err)
		}
	}()
}

func (p *Prometheus) handlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		url := c.FullPath()
		if url == "" {
			url = c.Request.URL.Path
		}
		code := strconv.Itoa(c.Writer.Status())
		reqCnt.WithLabelValues(code, c.Request.Method, url).Inc()
		reqDur.WithLabelValues(code, c.Request.Method, url).Observe(float64(time.Since(start).Milliseconds()))
	}
}
