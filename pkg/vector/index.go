package vector

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Entry is one embedding plus the metadata we can render at query time.
type Entry struct {
	UserID    uuid.UUID
	MessageID uuid.UUID
	Content   string
	Values    []float32
}

// Match is a query result, nearest first.
type Match struct {
	MessageID uuid.UUID
	Content   string
	Distance  float64
}

// Index stores per-user, per-message embeddings in isolated namespaces.
// Queries are restricted to a single namespace, so cross-message and
// cross-user leakage is structurally impossible as long as both paths build
// the namespace with Namespace.
type Index interface {
	Upsert(ctx context.Context, entry Entry) error
	Query(ctx context.Context, namespace string, values []float32, topK int) ([]Match, error)
}

// Namespace builds the partition key for one user's one message. Every write
// and every read goes through here.
func Namespace(userID, messageID uuid.UUID) string {
	return fmt.Sprintf("%s_%s", userID, messageID)
}
