package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/salasvega/easyvinted8-sub003/db"
)

// DismissalOverlay is the client-side "hide immediately" set, keyed by insight
// title per owner. It shadows, never replaces, the persisted dismissed status
// and is reconciled against it on every full reload.
type DismissalOverlay struct {
	client *redis.Client
}

func NewDismissalOverlay(client *redis.Client) *DismissalOverlay {
	return &DismissalOverlay{client: client}
}

func (o *DismissalOverlay) Add(ctx context.Context, ownerID, title string) error {
	return o.client.SAdd(ctx, db.DismissedKey(ownerID), title).Err()
}

func (o *DismissalOverlay) Remove(ctx context.Context, ownerID, title string) error {
	return o.client.SRem(ctx, db.DismissedKey(ownerID), title).Err()
}

func (o *DismissalOverlay) Members(ctx context.Context, ownerID string) (map[string]bool, error) {
	titles, err := o.client.SMembers(ctx, db.DismissedKey(ownerID)).Result()
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(titles))
	for _, t := range titles {
		set[t] = true
	}
	return set, nil
}
