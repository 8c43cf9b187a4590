package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var contentScans = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_content_scans",
	Help: "Number of content moderation checks, by outcome",
}, []string{"outcome"})

var bansIssued = promauto.NewCounter(prometheus.CounterOpts{
	Name: "moderation_bans_issued",
	Help: "Number of accounts banned for repeated violations",
})

var offenseResets = promauto.NewCounter(prometheus.CounterOpts{
	Name: "moderation_offense_resets",
	Help: "Number of explicit offense state resets",
})
