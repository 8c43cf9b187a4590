package verify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var verifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "verify_doctor_duration_sec",
	Help: "Total duration of credential verification attempts",
})

var verifyResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "verify_doctor_results",
	Help: "Number of credential verification attempts, by outcome",
}, []string{"outcome"})

var licenseLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "verify_license_lookups",
	Help: "Number of state license board lookups, by state and HTTP status code",
}, []string{"state", "status"})

var npiLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "verify_npi_lookups",
	Help: "Number of NPI registry lookups, by HTTP status code",
}, []string{"status"})

var documentScans = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "verify_document_scans",
	Help: "Number of document OCR uploads, by HTTP status code",
}, []string{"status"})
