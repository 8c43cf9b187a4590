package karma

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var activitiesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "karma_activities_recorded",
	Help: "Number of karma ledger entries appended",
}, []string{"type"})
