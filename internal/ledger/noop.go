package ledger

import "context"

// NoopPublic satisfies PublicNotifier for environments without ledger
// access. Every call succeeds with an empty reference.
type NoopPublic struct{}

func (NoopPublic) SubmitComplaint(context.Context, string, string, int) (string, error) {
	return "", nil
}

func (NoopPublic) UpdateStatus(context.Context, string, uint8) error { return nil }

func (NoopPublic) FileReport(context.Context, string, string) error { return nil }

// NoopConsortium satisfies ConsortiumNotifier for environments without
// consortium access.
type NoopConsortium struct{}

func (NoopConsortium) CreateComplaint(context.Context, Projection) (string, error) {
	return "", nil
}
