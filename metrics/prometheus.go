package metrics

import (
	"errors"
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	Prom = New()
)

// Metrics 暴露 Prometheus 注册表
type Metrics interface {
	Registry() *prometheus.Registry
}

type Prometheus struct {
	registry *prometheus.Registry
}

func New() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
	}

	return p
}

func (p *Prometheus) WithGoCollectorRuntimeMetrics() {
	p.register(collectors.NewGoCollector(
		collectors.WithGoCollectorRuntimeMetrics(collectors.GoRuntimeMetricsRule{Matcher: regexp.MustCompile("/.*")}),
	))
}

func (p *Prometheus) WithBuildInfoCollector() {
	p.register(collectors.NewBuildInfoCollector())
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// register 注册采集器，重复注册时忽略
func (p *Prometheus) register(c prometheus.Collector) {
	if err := p.registry.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			panic(err)
		}
	}
}
