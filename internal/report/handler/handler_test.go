package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybercell/internal/complaint"
	"cybercell/internal/identifier"
	"cybercell/internal/ledger"
	"cybercell/internal/platform/middleware"
	"cybercell/internal/report"
)

type stubValidator struct {
	tokens map[string]*middleware.JWTClaims
}

func (v *stubValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	claims, ok := v.tokens[token]
	if !ok {
		return nil, fmt.Errorf("unknown token")
	}
	return claims, nil
}

type env struct {
	router     chi.Router
	complaints *complaint.InMemoryStore
	citizenID  uuid.UUID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		complaints: complaint.NewInMemoryStore(),
		citizenID:  uuid.New(),
	}
	svc := report.NewService(
		report.NewInMemoryStore(),
		e.complaints,
		identifier.New(),
		ledger.NoopPublic{},
		report.WithLedgerTimeout(time.Second),
	)
	validator := &stubValidator{tokens: map[string]*middleware.JWTClaims{
		"citizen-token": {UserID: e.citizenID.String(), Role: middleware.RoleCitizen},
		"police-token":  {UserID: uuid.NewString(), Role: middleware.RolePolice},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(svc, logger, nil, validator)
	e.router = chi.NewRouter()
	h.Register(e.router)
	return e
}

func (e *env) seedComplaint(t *testing.T, status complaint.Status) *complaint.Complaint {
	t.Helper()
	c := &complaint.Complaint{
		ID:              uuid.New(),
		ComplaintNumber: "CC-1700000000000-" + uuid.NewString()[:4],
		ReporterID:      e.citizenID,
		Category:        complaint.CategoryFinancialTheft,
		Description:     "Fraudulent transfer reported with supporting bank statements.",
		Status:          status,
		SeverityScore:   85,
	}
	require.NoError(t, e.complaints.Create(context.Background(), c))
	return c
}

func (e *env) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func filingPayload(complaintID uuid.UUID) map[string]any {
	return map[string]any{
		"complaint_id": complaintID.String(),
		"station_code": "CYB01",
		"sections":     []string{"66C", "66D"},
		"remarks":      "Assigned to cyber cell for investigation.",
	}
}

func TestFileReportHTTP(t *testing.T) {
	e := newEnv(t)
	c := e.seedComplaint(t, complaint.StatusVerified)

	rec := e.do(t, http.MethodPost, "/reports", "police-token", filingPayload(c.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ReportNumber string   `json:"report_number"`
		ComplaintID  string   `json:"complaint_id"`
		StationCode  string   `json:"station_code"`
		Sections     []string `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Regexp(t, `^JH/CYB01/\d{4}/\d+$`, resp.ReportNumber)
	assert.Equal(t, c.ID.String(), resp.ComplaintID)
	assert.Equal(t, "CYB01", resp.StationCode)
	assert.Equal(t, []string{"66C", "66D"}, resp.Sections)

	stored, err := e.complaints.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, complaint.StatusReportFiled, stored.Status)
}

func TestFileReportRejectsCitizen(t *testing.T) {
	e := newEnv(t)
	c := e.seedComplaint(t, complaint.StatusVerified)

	rec := e.do(t, http.MethodPost, "/reports", "citizen-token", filingPayload(c.ID))
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
}

func TestFileReportRequiresAuth(t *testing.T) {
	e := newEnv(t)
	c := e.seedComplaint(t, complaint.StatusVerified)

	rec := e.do(t, http.MethodPost, "/reports", "", filingPayload(c.ID))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFileReportValidation(t *testing.T) {
	e := newEnv(t)
	c := e.seedComplaint(t, complaint.StatusVerified)

	payload := filingPayload(c.ID)
	payload["station_code"] = "cyb-01!"
	rec := e.do(t, http.MethodPost, "/reports", "police-token", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestFileReportTwiceConflicts(t *testing.T) {
	e := newEnv(t)
	c := e.seedComplaint(t, complaint.StatusVerified)

	rec := e.do(t, http.MethodPost, "/reports", "police-token", filingPayload(c.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/reports", "police-token", filingPayload(c.ID))
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestGetReportByNumber(t *testing.T) {
	e := newEnv(t)
	c := e.seedComplaint(t, complaint.StatusVerified)

	rec := e.do(t, http.MethodPost, "/reports", "police-token", filingPayload(c.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var filed struct {
		ReportNumber string `json:"report_number"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &filed))

	path := "/reports?number=" + url.QueryEscape(filed.ReportNumber)
	rec = e.do(t, http.MethodGet, path, "citizen-token", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		ReportNumber string `json:"report_number"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, filed.ReportNumber, resp.ReportNumber)
}

func TestGetReportByNumberRequiresParam(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/reports", "citizen-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReportByComplaint(t *testing.T) {
	e := newEnv(t)
	c := e.seedComplaint(t, complaint.StatusVerified)

	rec := e.do(t, http.MethodPost, "/reports", "police-token", filingPayload(c.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/complaints/"+c.ID.String()+"/report", "citizen-token", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		ComplaintID string `json:"complaint_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, c.ID.String(), resp.ComplaintID)
}

func TestGetReportByComplaintNotFound(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/complaints/"+uuid.NewString()+"/report", "citizen-token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}
