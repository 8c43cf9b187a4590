package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rounds-social/rounds/util"
)

// Default state medical board lookup endpoints. States without an entry
// cannot be verified and resolve to invalid.
var defaultLicenseEndpoints = map[string]string{
	"CA": "https://www.mbc.ca.gov/api/license-lookup",
	"NY": "https://www.health.ny.gov/api/professional-lookup",
	"TX": "https://www.tmb.state.tx.us/api/physician-lookup",
}

type LicenseClient struct {
	Client    *http.Client
	Endpoints map[string]string
}

func NewLicenseClient() *LicenseClient {
	return &LicenseClient{
		Client:    util.RobustHTTPClient(),
		Endpoints: defaultLicenseEndpoints,
	}
}

type licenseLookupResp struct {
	Status string `json:"status"`
	Valid  bool   `json:"valid"`
}

// VerifyMedicalLicense checks a license number against the state board for
// the given state. Unsupported states report invalid without an error.
func (lc *LicenseClient) VerifyMedicalLicense(ctx context.Context, licenseNumber, state string) (bool, error) {
	endpoint, ok := lc.Endpoints[state]
	if !ok {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return false, err
	}
	q := req.URL.Query()
	q.Add("license", licenseNumber)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	res, err := lc.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("license board request failed: %w", err)
	}
	defer res.Body.Close()

	licenseLookups.WithLabelValues(state, fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		return false, fmt.Errorf("license board request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read license board resp body: %w", err)
	}
	var respObj licenseLookupResp
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return false, fmt.Errorf("failed to parse license board resp JSON: %w", err)
	}
	return respObj.Status == "active" || respObj.Valid, nil
}
