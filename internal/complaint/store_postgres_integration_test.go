//go:build integration

package complaint_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"cybercell/internal/complaint"
	"cybercell/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *complaint.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.postgres.ApplyMigrations(s.T(), "../../migrations")
	s.store = complaint.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "complaints"))
}

func (s *PostgresStoreSuite) newComplaint(number string) *complaint.Complaint {
	amount := int64(75000)
	return &complaint.Complaint{
		ID:              uuid.New(),
		ComplaintNumber: number,
		ReporterID:      uuid.New(),
		Category:        complaint.CategoryFinancialTheft,
		Description:     "Unauthorized transfer drained the complainant's account.",
		Amount:          &amount,
		Location: complaint.Location{
			State:    "Jharkhand",
			District: "Ranchi",
		},
		Status:          complaint.StatusSubmitted,
		SeverityScore:   75,
		EvidenceAddress: "QmTestAddress",
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	c := s.newComplaint("CC-1700000000000-1")
	s.Require().NoError(s.store.Create(ctx, c))
	s.False(c.CreatedAt.IsZero())

	got, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.ComplaintNumber, got.ComplaintNumber)
	s.Equal("Ranchi", got.Location.District)
	s.Nil(got.PublicTxRef)

	byNumber, err := s.store.FindByNumber(ctx, c.ComplaintNumber)
	s.Require().NoError(err)
	s.Equal(c.ID, byNumber.ID)

	_, err = s.store.FindByID(ctx, uuid.New())
	s.ErrorIs(err, complaint.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateNumber() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newComplaint("CC-1700000000000-2")))
	err := s.store.Create(ctx, s.newComplaint("CC-1700000000000-2"))
	s.ErrorIs(err, complaint.ErrDuplicateNumber)
}

func (s *PostgresStoreSuite) TestUpdateStatusCAS() {
	ctx := context.Background()
	c := s.newComplaint("CC-1700000000000-3")
	s.Require().NoError(s.store.Create(ctx, c))

	s.Require().NoError(s.store.UpdateStatus(ctx, c.ID, complaint.StatusSubmitted, complaint.StatusVerified))

	// The expected-from status no longer matches.
	err := s.store.UpdateStatus(ctx, c.ID, complaint.StatusSubmitted, complaint.StatusUnderInvestigation)
	s.ErrorIs(err, complaint.ErrStaleStatus)

	err = s.store.UpdateStatus(ctx, uuid.New(), complaint.StatusSubmitted, complaint.StatusVerified)
	s.ErrorIs(err, complaint.ErrNotFound)
}

func (s *PostgresStoreSuite) TestMarkReportFiled() {
	ctx := context.Background()
	c := s.newComplaint("CC-1700000000000-4")
	s.Require().NoError(s.store.Create(ctx, c))

	s.Require().NoError(s.store.MarkReportFiled(ctx, c.ID, complaint.StatusSubmitted, "JH/CYB01/2026/1"))

	got, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(complaint.StatusReportFiled, got.Status)
	s.Require().NotNil(got.ReportNumber)
	s.Equal("JH/CYB01/2026/1", *got.ReportNumber)
}

func (s *PostgresStoreSuite) TestListFilters() {
	ctx := context.Background()
	low := s.newComplaint("CC-1700000000000-5")
	low.SeverityScore = 20
	s.Require().NoError(s.store.Create(ctx, low))

	high := s.newComplaint("CC-1700000000000-6")
	high.SeverityScore = 90
	s.Require().NoError(s.store.Create(ctx, high))
	s.Require().NoError(s.store.UpdateStatus(ctx, high.ID, complaint.StatusSubmitted, complaint.StatusVerified))

	minSeverity := 50
	out, err := s.store.List(ctx, complaint.Filter{MinSeverity: &minSeverity})
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal(high.ID, out[0].ID)

	status := complaint.StatusSubmitted
	out, err = s.store.List(ctx, complaint.Filter{Status: &status})
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal(low.ID, out[0].ID)
}

func (s *PostgresStoreSuite) TestSetRefsAndAssign() {
	ctx := context.Background()
	c := s.newComplaint("CC-1700000000000-7")
	s.Require().NoError(s.store.Create(ctx, c))

	s.Require().NoError(s.store.SetPublicTxRef(ctx, c.ID, "0xdeadbeef"))
	s.Require().NoError(s.store.SetConsortiumRef(ctx, c.ID, "consortium-1"))
	officerID := uuid.New()
	s.Require().NoError(s.store.Assign(ctx, c.ID, officerID))

	got, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.PublicTxRef)
	s.Equal("0xdeadbeef", *got.PublicTxRef)
	s.Require().NotNil(got.ConsortiumRef)
	s.Require().NotNil(got.AssignedTo)
	s.Equal(officerID, *got.AssignedTo)
}
