package metrics

/* adapted from https://github.com/zsais/go-gin-prometheus
edits:
- replace slog with a new logger interface
- remove push gateway and basic auth
- register through Register so repeated construction reuses collectors
*/

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var reqCnt = &Metric{
	ID:          "reqCnt",
	Name:        "req_total",
	Description: "How many HTTP requests processed, partitioned by status code and HTTP method.",
	Type:        "counter_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var reqDur = &Metric{
	ID:          "reqDur",
	Name:        "req_dur_ms",
	Description: "The HTTP request latencies in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var resSz = &Metric{
	ID:          "resSz",
	Name:        "resp_sz_bytes",
	Description: "The HTTP response sizes in bytes.",
	Type:        "summary_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

const defaultMetricPath = "/metrics"

type Logger interface {
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// RequestCounterURLLabelMappingFn controls the cardinality of the "url" label,
// e.g. by mapping "/api/v1/reports/churn_rate" to "/api/v1/reports/:name".
type RequestCounterURLLabelMappingFn func(c *gin.Context) string

// Prometheus contains the HTTP metrics gathered by the instance and its path
type Prometheus struct {
	reqCnt        *prometheus.CounterVec
	reqDur        *prometheus.HistogramVec
	resSz         *prometheus.SummaryVec
	router        *gin.Engine
	listenAddress string
	gatherer      prometheus.Gatherer

	MetricsPath string

	ReqCntURLLabelMappingFn RequestCounterURLLabelMappingFn

	logger Logger
}

type NewPrometheusOptions struct {
	Subsystem               string
	MetricsPath             string
	ReqCntURLLabelMappingFn RequestCounterURLLabelMappingFn
	Registerer              prometheus.Registerer
	Gatherer                prometheus.Gatherer
	Logger                  Logger
}

// NewPrometheus registers the HTTP metrics under the given subsystem.
func NewPrometheus(options NewPrometheusOptions) (*Prometheus, error) {
	p := &Prometheus{
		MetricsPath:             options.MetricsPath,
		ReqCntURLLabelMappingFn: options.ReqCntURLLabelMappingFn,
		gatherer:                options.Gatherer,
		logger:                  options.Logger,
	}
	if p.MetricsPath == "" {
		p.MetricsPath = defaultMetricPath
	}
	if p.ReqCntURLLabelMappingFn == nil {
		p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
			if fp := c.FullPath(); fp != "" {
				return fp
			}
			return c.Request.URL.Path
		}
	}
	if p.gatherer == nil {
		p.gatherer = prometheus.DefaultGatherer
	}
	reg := options.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	cnt, err := Register(reg, reqCnt, options.Subsystem)
	if err != nil {
		return nil, err
	}
	dur, err := Register(reg, reqDur, options.Subsystem)
	if err != nil {
		return nil, err
	}
	sz, err := Register(reg, resSz, options.Subsystem)
	if err != nil {
		return nil, err
	}
	p.reqCnt = cnt.(*prometheus.CounterVec)
	p.reqDur = dur.(*prometheus.HistogramVec)
	p.resSz = sz.(*prometheus.SummaryVec)
	return p, nil
}

// SetListenAddress exposes metrics on a separate address instead of the
// engine the middleware is attached to.
func (p *Prometheus) SetListenAddress(address string) {
	p.listenAddress = address
	if p.listenAddress != "" {
		p.router = gin.New()
	}
}

// Use adds the middleware to a gin engine and mounts the metrics endpoint.
func (p *Prometheus) Use(e *gin.Engine) {
	e.Use(p.HandlerFunc())
	if p.listenAddress != "" {
		p.router.GET(p.MetricsPath, p.handler())
		go func() {
			if err := p.router.Run(p.listenAddress); err != nil && p.logger != nil {
				p.logger.Errorf("metrics server stopped: %v", err)
			}
		}()
		return
	}
	e.GET(p.MetricsPath, p.handler())
}

func (p *Prometheus) handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// HandlerFunc defines handler function for middleware
func (p *Prometheus) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == p.MetricsPath {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		elapsed := MillisecondsSince(start)
		size := float64(max(c.Writer.Size(), 0))
		url := p.ReqCntURLLabelMappingFn(c)
		ref := c.Request.Header.Get(RefererKey)

		p.reqDur.WithLabelValues(status, c.Request.Method, url, ref).Observe(elapsed)
		p.reqCnt.WithLabelValues(status, c.Request.Method, url, ref).Inc()
		p.resSz.WithLabelValues(status, c.Request.Method, url, ref).Observe(size)
	}
}
