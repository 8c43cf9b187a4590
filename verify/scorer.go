// Package verify combines independent credential checks (state license
// board, NPI registry, document OCR) into a single confidence score gating
// account activation.
package verify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// checks must all resolve within this window; a timeout counts as
	// failed checks, never as an error
	defaultCheckTimeout = 10 * time.Second

	// minimum fraction of passing checks for a valid credential (3 of 4)
	validityThreshold = 0.75
)

type CheckSet struct {
	LicenseValid     bool `json:"licenseValid"`
	NPIValid         bool `json:"npiValid"`
	DocumentValid    bool `json:"documentValid"`
	InstitutionValid bool `json:"institutionValid"`
}

type Result struct {
	IsValid    bool     `json:"isValid"`
	Confidence float64  `json:"confidence"`
	Details    CheckSet `json:"details"`
	Errors     []string `json:"errors,omitempty"`
}

type Request struct {
	LicenseNumber    string
	NPI              string
	State            string
	Institution      string
	DocumentFilename string
	Document         []byte
}

type Scorer struct {
	License   *LicenseClient
	NPI       *NPIClient
	Documents *DocumentClient
	Logger    *slog.Logger
	Timeout   time.Duration
}

func NewScorer(license *LicenseClient, npi *NPIClient, documents *DocumentClient, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{
		License:   license,
		NPI:       npi,
		Documents: documents,
		Logger:    logger.With("system", "verify"),
		Timeout:   defaultCheckTimeout,
	}
}

// VerifyDoctor runs the external checks concurrently and folds the results
// into one decision. Individual check failures (including transport errors)
// become false results with a message in Errors; this method never returns
// an error past its boundary.
func (s *Scorer) VerifyDoctor(ctx context.Context, req *Request) (result *Result) {
	start := time.Now()
	defer func() {
		verifyDuration.Observe(time.Since(start).Seconds())
		// any panic below collapses to a service-unavailable result
		if r := recover(); r != nil {
			s.Logger.Error("verification execution exception", "err", r)
			result = &Result{
				IsValid:    false,
				Confidence: 0,
				Errors:     []string{"Verification service unavailable"},
			}
			verifyResults.WithLabelValues("error").Inc()
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	checks := CheckSet{
		// not independently checked against a registry yet; assumed valid
		InstitutionValid: true,
	}
	var errs []string

	var licenseErr, npiErr, docErr error
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		checks.LicenseValid, licenseErr = s.License.VerifyMedicalLicense(ctx, req.LicenseNumber, req.State)
	}()
	go func() {
		defer wg.Done()
		if req.NPI == "" {
			// no NPI supplied: the check is skipped and passes by default
			checks.NPIValid = true
			return
		}
		checks.NPIValid, npiErr = s.NPI.VerifyNPI(ctx, req.NPI)
	}()
	go func() {
		defer wg.Done()
		checks.DocumentValid, _, docErr = s.Documents.VerifyDocument(ctx, req.DocumentFilename, req.Document)
	}()
	wg.Wait()

	for _, e := range []error{licenseErr, npiErr, docErr} {
		if e != nil {
			errs = append(errs, e.Error())
		}
	}
	if !checks.LicenseValid && licenseErr == nil {
		errs = append(errs, "Medical license not found")
	}
	if req.NPI != "" && !checks.NPIValid && npiErr == nil {
		errs = append(errs, "NPI number not valid")
	}
	if !checks.DocumentValid && docErr == nil {
		errs = append(errs, "Document verification failed")
	}

	validChecks := 0
	for _, ok := range []bool{checks.LicenseValid, checks.NPIValid, checks.DocumentValid, checks.InstitutionValid} {
		if ok {
			validChecks++
		}
	}
	confidence := float64(validChecks) / 4

	result = &Result{
		IsValid:    confidence >= validityThreshold,
		Confidence: confidence,
		Details:    checks,
		Errors:     errs,
	}
	if result.IsValid {
		verifyResults.WithLabelValues("valid").Inc()
	} else {
		verifyResults.WithLabelValues("invalid").Inc()
	}
	s.Logger.Info("credential verification completed",
		"state", req.State,
		"confidence", confidence,
		"isValid", result.IsValid,
		"errors", len(errs))
	return result
}
