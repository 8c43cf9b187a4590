package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/rounds-social/rounds/util"
)

// Documents with OCR extraction confidence above this are considered valid.
const documentConfidenceThreshold = 0.8

// DocumentClient uploads a credential document to the OCR verification
// backend.
type DocumentClient struct {
	Client *http.Client
	Host   string
}

func NewDocumentClient(host string) *DocumentClient {
	return &DocumentClient{
		Client: util.RobustHTTPClient(),
		Host:   host,
	}
}

type documentScanResp struct {
	Confidence float64                `json:"confidence"`
	Data       map[string]interface{} `json:"data"`
}

// VerifyDocument uploads document bytes and returns validity plus whatever
// fields the OCR service extracted.
func (dc *DocumentClient) VerifyDocument(ctx context.Context, filename string, docBytes []byte) (bool, map[string]interface{}, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return false, nil, err
	}
	if _, err := fw.Write(docBytes); err != nil {
		return false, nil, err
	}
	if err := mw.Close(); err != nil {
		return false, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", dc.Host+"/api/verify-document", &body)
	if err != nil {
		return false, nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	res, err := dc.Client.Do(req)
	if err != nil {
		return false, nil, fmt.Errorf("document verification request failed: %w", err)
	}
	defer res.Body.Close()

	documentScans.WithLabelValues(fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		return false, nil, fmt.Errorf("document verification request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return false, nil, fmt.Errorf("failed to read document verification resp body: %w", err)
	}
	var respObj documentScanResp
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return false, nil, fmt.Errorf("failed to parse document verification resp JSON: %w", err)
	}
	return respObj.Confidence > documentConfidenceThreshold, respObj.Data, nil
}
