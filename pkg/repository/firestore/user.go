package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *userRepository) usersCollection() *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, "users"))
}

func (r *userRepository) Get(ctx context.Context, id types.UserID) (*model.UserProfile, error) {
	snap, err := r.usersCollection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	var doc userDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("id", id))
	}

	return doc.toModel(), nil
}

func (r *userRepository) Put(ctx context.Context, profile *model.UserProfile) (*model.UserProfile, error) {
	if profile.ID == "" {
		return nil, goerr.New("user ID is required")
	}

	docRef := r.usersCollection().Doc(profile.ID.String())
	stored := model.CopyUserProfile(profile)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now().UTC()
		stored.CreatedAt = now
		stored.UpdatedAt = now

		snap, err := tx.Get(docRef)
		switch {
		case err == nil:
			var existing userDocument
			if err := snap.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to decode user", goerr.V("id", profile.ID))
			}
			stored.CreatedAt = existing.CreatedAt
		case status.Code(err) != codes.NotFound:
			return goerr.Wrap(err, "failed to get user", goerr.V("id", profile.ID))
		}

		return tx.Set(docRef, fromUser(stored))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to put user", goerr.V("id", profile.ID))
	}

	return stored, nil
}
