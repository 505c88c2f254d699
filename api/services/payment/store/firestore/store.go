package fsstore

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lolfundamentals/members-api/api/services/payment/store"
)

// paidStatusRecord mirrors the document layout in the paid-users collection.
type paidStatusRecord struct {
	Paid bool `firestore:"paid"`
}

type fsStore struct {
	client     *firestore.Client
	collection string
}

// New returns a store.Store backed by a Firestore collection keyed by
// identity (email), one document per identity.
func New(client *firestore.Client, collection string) store.Store {
	return fsStore{client: client, collection: collection}
}

// SetPaid upserts {paid: true} with merge semantics so unrelated fields
// on the document survive and duplicate webhook deliveries are no-ops.
func (s fsStore) SetPaid(ctx context.Context, identity string) error {
	_, err := s.client.Collection(s.collection).Doc(identity).Set(ctx, map[string]interface{}{
		"paid": true,
	}, firestore.MergeAll)
	return err
}

func (s fsStore) IsPaid(ctx context.Context, identity string) (bool, error) {
	snap, err := s.client.Collection(s.collection).Doc(identity).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var rec paidStatusRecord
	if err := snap.DataTo(&rec); err != nil {
		return false, err
	}
	return rec.Paid, nil
}
