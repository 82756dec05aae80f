package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const strikesCollection = "strikes"

type strikeRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newStrikeRepository(client *firestore.Client) *strikeRepository {
	return &strikeRepository{client: client}
}

func (r *strikeRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + strikesCollection)
}

// strikeDoc is the persistence form of model.StrikeRecord
type strikeDoc struct {
	UserID    string    `firestore:"user_id"`
	Count     int       `firestore:"count"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func toStrikeDoc(rec *model.StrikeRecord) *strikeDoc {
	return &strikeDoc{
		UserID:    string(rec.UserID),
		Count:     rec.Count,
		UpdatedAt: rec.UpdatedAt,
	}
}

func (d *strikeDoc) toModel() *model.StrikeRecord {
	return &model.StrikeRecord{
		UserID:    types.UserID(d.UserID),
		Count:     d.Count,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *strikeRepository) Exists(ctx context.Context, userID types.UserID) (bool, error) {
	_, err := r.collection().Doc(string(userID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to check strike record", goerr.V("user_id", userID))
	}
	return true, nil
}

func (r *strikeRepository) Get(ctx context.Context, userID types.UserID) (*model.StrikeRecord, error) {
	doc, err := r.collection().Doc(string(userID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrStrikeNotFound, "strike record not found", goerr.V("user_id", userID))
		}
		return nil, goerr.Wrap(err, "failed to get strike record", goerr.V("user_id", userID))
	}

	var d strikeDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode strike record", goerr.V("user_id", userID))
	}

	return d.toModel(), nil
}

func (r *strikeRepository) Insert(ctx context.Context, rec *model.StrikeRecord) error {
	rec.UpdatedAt = time.Now()
	if _, err := r.collection().Doc(string(rec.UserID)).Create(ctx, toStrikeDoc(rec)); err != nil {
		return goerr.Wrap(err, "failed to insert strike record", goerr.V("user_id", rec.UserID))
	}
	return nil
}

func (r *strikeRepository) Update(ctx context.Context, rec *model.StrikeRecord) error {
	rec.UpdatedAt = time.Now()
	docRef := r.collection().Doc(string(rec.UserID))
	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(interfaces.ErrStrikeNotFound, "strike record not found", goerr.V("user_id", rec.UserID))
		}
		return goerr.Wrap(err, "failed to get strike record", goerr.V("user_id", rec.UserID))
	}
	if _, err := docRef.Set(ctx, toStrikeDoc(rec)); err != nil {
		return goerr.Wrap(err, "failed to update strike record", goerr.V("user_id", rec.UserID))
	}
	return nil
}
