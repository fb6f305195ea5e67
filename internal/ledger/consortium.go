package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	dErrors "cybercell/pkg/domain-errors"
	"cybercell/pkg/platform/circuit"
)

// ConsortiumClient talks to the consortium-ledger gateway, which submits the
// complaint projection to the permissioned chaincode channel on our behalf.
type ConsortiumClient struct {
	endpoint string
	breaker  *circuit.Breaker
	http     *http.Client
}

// NewConsortiumClient builds a client for the gateway at endpoint.
func NewConsortiumClient(endpoint string, timeout time.Duration) *ConsortiumClient {
	return &ConsortiumClient{
		endpoint: endpoint,
		breaker:  circuit.New("consortium-ledger", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		http:     &http.Client{Timeout: timeout},
	}
}

type createComplaintResponse struct {
	Ref string `json:"ref"`
}

func (c *ConsortiumClient) CreateComplaint(ctx context.Context, projection Projection) (string, error) {
	if c.breaker.IsOpen() {
		return "", dErrors.New(dErrors.CodeUnavailable, "consortium ledger circuit open")
	}

	payload, err := json.Marshal(projection)
	if err != nil {
		return "", fmt.Errorf("encode projection: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/complaints", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build consortium request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "consortium ledger unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.breaker.RecordFailure()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", dErrors.Newf(dErrors.CodeUnavailable, "consortium ledger returned %d: %s", resp.StatusCode, detail)
	}
	c.breaker.RecordSuccess()

	var out createComplaintResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "consortium ledger returned an unreadable response")
	}
	if out.Ref == "" {
		out.Ref = projection.ComplaintNumber
	}
	return out.Ref, nil
}
