package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	dErrors "cybercell/pkg/domain-errors"
	"cybercell/pkg/platform/circuit"
)

// PublicClient talks to the public-ledger gateway, which wraps the complaint
// contract behind a JSON API and signs transactions on our behalf. Calls are
// slow; the caller bounds them with its own ledger timeout.
type PublicClient struct {
	endpoint string
	breaker  *circuit.Breaker
	http     *http.Client
}

// NewPublicClient builds a client for the gateway at endpoint.
func NewPublicClient(endpoint string, timeout time.Duration) *PublicClient {
	return &PublicClient{
		endpoint: endpoint,
		breaker:  circuit.New("public-ledger", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		http:     &http.Client{Timeout: timeout},
	}
}

type submitComplaintRequest struct {
	ComplaintNumber string `json:"complaint_number"`
	EvidenceAddress string `json:"evidence_address"`
	Severity        int    `json:"severity"`
}

type submitComplaintResponse struct {
	TxHash string `json:"tx_hash"`
}

func (c *PublicClient) SubmitComplaint(ctx context.Context, complaintNumber string, evidenceAddress string, severity int) (string, error) {
	var resp submitComplaintResponse
	err := c.post(ctx, "/complaints", submitComplaintRequest{
		ComplaintNumber: complaintNumber,
		EvidenceAddress: evidenceAddress,
		Severity:        severity,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.TxHash, nil
}

func (c *PublicClient) UpdateStatus(ctx context.Context, complaintNumber string, statusCode uint8) error {
	path := fmt.Sprintf("/complaints/%s/status", url.PathEscape(complaintNumber))
	return c.post(ctx, path, map[string]uint8{"status": statusCode}, nil)
}

func (c *PublicClient) FileReport(ctx context.Context, complaintNumber string, reportNumber string) error {
	path := fmt.Sprintf("/complaints/%s/report", url.PathEscape(complaintNumber))
	return c.post(ctx, path, map[string]string{"report_number": reportNumber}, nil)
}

func (c *PublicClient) post(ctx context.Context, path string, body any, out any) error {
	if c.breaker.IsOpen() {
		return dErrors.New(dErrors.CodeUnavailable, "public ledger circuit open")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode ledger request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build ledger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "public ledger unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.breaker.RecordFailure()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return dErrors.Newf(dErrors.CodeUnavailable, "public ledger returned %d: %s", resp.StatusCode, detail)
	}
	c.breaker.RecordSuccess()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "public ledger returned an unreadable response")
	}
	return nil
}
