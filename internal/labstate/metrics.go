package labstate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	labsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "labstate_labs_built_total",
		Help: "the number of discrete lab results reconstructed from OBR/OBX streams",
	})
	obxSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "labstate_obx_skipped_total",
		Help: "the number of OBX segments skipped for lacking a preferred code",
	})
)
