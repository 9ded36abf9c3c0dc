package loader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "heroes_loader_pages_total",
	Help: "Incident pages fetched by the list loader, by outcome",
}, []string{"outcome"}) // "loaded", "failed"
