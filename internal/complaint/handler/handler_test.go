package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybercell/internal/complaint"
	"cybercell/internal/conversation"
	"cybercell/internal/evidence"
	"cybercell/internal/evidence/backup"
	"cybercell/internal/evidence/cas"
	"cybercell/internal/identifier"
	"cybercell/internal/ledger"
	"cybercell/internal/platform/middleware"
)

// stubValidator maps bearer tokens straight to claims.
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
	router    chi.Router
	store     *complaint.InMemoryStore
	svc       *complaint.Service
	citizenID uuid.UUID
	officerID uuid.UUID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:     complaint.NewInMemoryStore(),
		citizenID: uuid.New(),
		officerID: uuid.New(),
	}
	archiver := evidence.NewArchiver(cas.NewInMemoryStore(), backup.Noop{})
	e.svc = complaint.NewService(
		e.store,
		evidence.NewInMemoryStore(),
		archiver,
		identifier.New(),
		ledger.NoopPublic{},
		ledger.NoopConsortium{},
		conversation.NewInMemoryStore(),
	)
	validator := &stubValidator{tokens: map[string]*middleware.JWTClaims{
		"citizen-token": {UserID: e.citizenID.String(), Role: middleware.RoleCitizen},
		"police-token":  {UserID: e.officerID.String(), Role: middleware.RolePolice},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(e.svc, logger, nil, validator, 10<<20)
	e.router = chi.NewRouter()
	h.Register(e.router)
	return e
}

func (e *env) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func createPayload() map[string]any {
	return map[string]any{
		"category":    "Financial Theft",
		"description": "Unauthorized transfer of 2.5 lakh from my account this morning.",
		"amount":      250000,
		"ongoing":     true,
		"location": map[string]any{
			"state":    "Jharkhand",
			"district": "Ranchi",
			"pincode":  "834001",
		},
	}
}

func TestCreateComplaintJSON(t *testing.T) {
	e := newEnv(t)
	body, err := json.Marshal(createPayload())
	require.NoError(t, err)

	rec := e.do(t, http.MethodPost, "/complaints", "citizen-token",
		bytes.NewReader(body), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	e.svc.Flush()

	var resp struct {
		ComplaintNumber string             `json:"complaint_number"`
		Status          string             `json:"status"`
		SeverityScore   int                `json:"severity_score"`
		SeverityLevel   string             `json:"severity_level"`
		Priority        int                `json:"priority"`
		Location        complaint.Location `json:"location"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Regexp(t, `^CC-\d+-\d+$`, resp.ComplaintNumber)
	assert.Equal(t, "submitted", resp.Status)
	assert.Equal(t, 85, resp.SeverityScore)
	assert.Equal(t, "critical", resp.SeverityLevel)
	assert.Equal(t, 1, resp.Priority)
	assert.Equal(t, "834001", resp.Location.Pincode)
	assert.Equal(t, "Ranchi", resp.Location.District)
}

func TestCreateComplaintMultipart(t *testing.T) {
	e := newEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	payload, err := json.Marshal(createPayload())
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("payload", string(payload)))

	part, err := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="files"; filename="statement.pdf"`},
		"Content-Type":        {"application/pdf"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 bank statement"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := e.do(t, http.MethodPost, "/complaints", "citizen-token", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	e.svc.Flush()

	var resp struct {
		EvidenceAddress string `json:"evidence_address"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.EvidenceAddress)
}

func TestCreateComplaintValidation(t *testing.T) {
	e := newEnv(t)
	payload := createPayload()
	payload["description"] = "too short"
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := e.do(t, http.MethodPost, "/complaints", "citizen-token",
		bytes.NewReader(body), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateComplaintRequiresAuth(t *testing.T) {
	e := newEnv(t)
	body, err := json.Marshal(createPayload())
	require.NoError(t, err)

	rec := e.do(t, http.MethodPost, "/complaints", "", bytes.NewReader(body), "application/json")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateStatusEndpoint(t *testing.T) {
	e := newEnv(t)
	body, err := json.Marshal(createPayload())
	require.NoError(t, err)
	rec := e.do(t, http.MethodPost, "/complaints", "citizen-token",
		bytes.NewReader(body), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)
	e.svc.Flush()

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Citizens may not change status.
	rec = e.do(t, http.MethodPatch, "/complaints/"+created.ID+"/status", "citizen-token",
		strings.NewReader(`{"status":"verified"}`), "application/json")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodPatch, "/complaints/"+created.ID+"/status", "police-token",
		strings.NewReader(`{"status":"verified"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	e.svc.Flush()

	// Skipping straight to closed is fine; walking backwards is not.
	rec = e.do(t, http.MethodPatch, "/complaints/"+created.ID+"/status", "police-token",
		strings.NewReader(`{"status":"submitted"}`), "application/json")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetComplaintScoping(t *testing.T) {
	e := newEnv(t)
	body, err := json.Marshal(createPayload())
	require.NoError(t, err)
	rec := e.do(t, http.MethodPost, "/complaints", "citizen-token",
		bytes.NewReader(body), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)
	e.svc.Flush()

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = e.do(t, http.MethodGet, "/complaints/"+created.ID, "citizen-token", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/complaints/"+created.ID, "police-token", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListComplaints(t *testing.T) {
	e := newEnv(t)
	body, err := json.Marshal(createPayload())
	require.NoError(t, err)
	rec := e.do(t, http.MethodPost, "/complaints", "citizen-token",
		bytes.NewReader(body), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)
	e.svc.Flush()

	rec = e.do(t, http.MethodGet, "/complaints", "citizen-token", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Complaints []json.RawMessage `json:"complaints"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Complaints, 1)

	rec = e.do(t, http.MethodGet, "/complaints?status=submitted&min_severity=50", "police-token", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Complaints, 1)

	rec = e.do(t, http.MethodGet, "/complaints?status=bogus", "police-token", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssignEndpoint(t *testing.T) {
	e := newEnv(t)
	body, err := json.Marshal(createPayload())
	require.NoError(t, err)
	rec := e.do(t, http.MethodPost, "/complaints", "citizen-token",
		bytes.NewReader(body), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)
	e.svc.Flush()

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	assignBody := fmt.Sprintf(`{"officer_id":%q}`, e.officerID)
	rec = e.do(t, http.MethodPost, "/complaints/"+created.ID+"/assign", "police-token",
		strings.NewReader(assignBody), "application/json")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
