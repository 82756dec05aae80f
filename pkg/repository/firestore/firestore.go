package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
)

// Firestore is the Firestore-backed Repository
type Firestore struct {
	client  *firestore.Client
	strike  *strikeRepository
	caseLog *caseLogRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes all collection names, keeping multiple
// deployments apart within one database
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.strike.collectionPrefix = prefix
		f.caseLog.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID), goerr.V("database_id", databaseID))
	}

	f := &Firestore{
		client:  client,
		strike:  newStrikeRepository(client),
		caseLog: newCaseLogRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Strike() interfaces.StrikeRepository {
	return f.strike
}

func (f *Firestore) CaseLog() interfaces.CaseLogRepository {
	return f.caseLog
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
