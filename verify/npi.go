package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rounds-social/rounds/util"
)

const defaultNPIHost = "https://npiregistry.cms.hhs.gov/api"

// NPIClient queries the CMS National Provider Identifier registry.
type NPIClient struct {
	Client *http.Client
	Host   string
}

func NewNPIClient() *NPIClient {
	return &NPIClient{
		Client: util.RobustHTTPClient(),
		Host:   defaultNPIHost,
	}
}

type npiRegistryResp struct {
	ResultCount int `json:"result_count"`
}

// VerifyNPI reports whether the registry knows the given NPI number.
func (nc *NPIClient) VerifyNPI(ctx context.Context, npi string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", nc.Host+"/", nil)
	if err != nil {
		return false, err
	}
	q := req.URL.Query()
	q.Add("number", npi)
	q.Add("version", "2.1")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	res, err := nc.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("NPI registry request failed: %w", err)
	}
	defer res.Body.Close()

	npiLookups.WithLabelValues(fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		return false, fmt.Errorf("NPI registry request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read NPI registry resp body: %w", err)
	}
	var respObj npiRegistryResp
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return false, fmt.Errorf("failed to parse NPI registry resp JSON: %w", err)
	}
	return respObj.ResultCount > 0, nil
}
