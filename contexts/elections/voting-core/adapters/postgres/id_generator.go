package postgresadapter

import (
	"context"

	"github.com/google/uuid"
)

// UUIDGenerator creates random UUIDv4 identifiers for votes, tokens and events.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
