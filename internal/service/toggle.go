package service

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"

	"network/internal/model"
	"network/internal/repository"
)

// CounterAdjustment names one counter column a toggle maintains.
type CounterAdjustment struct {
	Entity repository.Entity
	ID     int64
	Field  repository.Field
}

// Edge binds an edge store to the counter columns its membership backs.
// Counters resolves the adjustments for one (actor, target) pair; the engine
// applies them with +1 on add and -1 on remove.
type Edge struct {
	Name     string
	Store    repository.EdgeStore
	Counters func(actorID, targetID int64) []CounterAdjustment
}

// LikeEdge is the user->post edge. Only the post side carries a counter.
func LikeEdge(store repository.LikeRepository) Edge {
	return Edge{
		Name:  "like",
		Store: store,
		Counters: func(userID, postID int64) []CounterAdjustment {
			return []CounterAdjustment{
				{Entity: repository.EntityPost, ID: postID, Field: repository.FieldLikeCount},
			}
		},
	}
}

// FollowEdge is the user->user edge; both sides carry a counter.
func FollowEdge(store repository.FollowRepository) Edge {
	return Edge{
		Name:  "follow",
		Store: store,
		Counters: func(followerID, followeeID int64) []CounterAdjustment {
			return []CounterAdjustment{
				{Entity: repository.EntityUser, ID: followeeID, Field: repository.FieldFollowersCount},
				{Entity: repository.EntityUser, ID: followerID, Field: repository.FieldFollowingCount},
			}
		},
	}
}

// ToggleEngine atomically flips an edge's membership and its counters.
//
// The membership check runs inside the same transaction as the mutation; a
// pre-check in a separate transaction would read stale state and double-apply
// under racing toggles. The existence check locks a present edge row, and the
// add path relies on ON CONFLICT DO NOTHING, so two fast back-to-back toggles
// serialize and the durable counters never drift.
type ToggleEngine struct {
	withinTx repository.TxFunc
	ledger   repository.CounterLedger
}

func NewToggleEngine(withinTx repository.TxFunc, ledger repository.CounterLedger) *ToggleEngine {
	return &ToggleEngine{withinTx: withinTx, ledger: ledger}
}

// Toggle flips membership of (actor, target) on the given edge and adjusts
// every bound counter by +1 or -1 in the same transaction. Returns the new
// membership state: true when the edge is now present.
func (e *ToggleEngine) Toggle(ctx context.Context, edge Edge, actorID, targetID int64) (bool, error) {
	var nowPresent bool

	err := e.withinTx(ctx, func(tx *sqlx.Tx) error {
		present, err := edge.Store.ExistsForUpdate(ctx, tx, actorID, targetID)
		if err != nil {
			return err
		}

		delta := 1
		if present {
			if err := edge.Store.Delete(ctx, tx, actorID, targetID); err != nil {
				return err
			}
			delta = -1
		} else {
			inserted, err := edge.Store.Insert(ctx, tx, actorID, targetID)
			if err != nil {
				return err
			}
			if !inserted {
				// A concurrent toggle inserted the edge between our existence
				// check and the insert. Roll back rather than drift a counter.
				return model.ErrToggleConflict
			}
		}

		for _, adj := range edge.Counters(actorID, targetID) {
			if err := e.ledger.Adjust(ctx, tx, adj.Entity, adj.ID, adj.Field, delta); err != nil {
				return err
			}
		}

		nowPresent = !present
		return nil
	})
	if err != nil {
		return false, err
	}

	log.Printf("[ToggleEngine] %s toggled: actor=%d target=%d present=%t", edge.Name, actorID, targetID, nowPresent)
	return nowPresent, nil
}
