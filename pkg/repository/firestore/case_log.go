package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
	"google.golang.org/api/iterator"
)

const caseLogsCollection = "case_logs"

type caseLogRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newCaseLogRepository(client *firestore.Client) *caseLogRepository {
	return &caseLogRepository{client: client}
}

func (r *caseLogRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + caseLogsCollection)
}

type caseLogDoc struct {
	ID            string    `firestore:"id"`
	ReportID      string    `firestore:"report_id"`
	ReporterID    string    `firestore:"reporter_id"`
	TargetUserID  string    `firestore:"target_user_id"`
	ChannelID     string    `firestore:"channel_id"`
	Text          string    `firestore:"text"`
	Category      string    `firestore:"category"`
	Actions       []int     `firestore:"actions"`
	Outcome       string    `firestore:"outcome"`
	AutoGenerated bool      `firestore:"auto_generated"`
	Priority      int       `firestore:"priority"`
	Score         float64   `firestore:"score"`
	CreatedAt     time.Time `firestore:"created_at"`
}

func toCaseLogDoc(l *model.CaseLog) *caseLogDoc {
	actions := make([]int, 0, len(l.Actions))
	for _, a := range l.Actions {
		actions = append(actions, int(a))
	}
	return &caseLogDoc{
		ID:            l.ID,
		ReportID:      string(l.ReportID),
		ReporterID:    string(l.ReporterID),
		TargetUserID:  string(l.TargetUserID),
		ChannelID:     string(l.ChannelID),
		Text:          l.Text,
		Category:      string(l.Category),
		Actions:       actions,
		Outcome:       l.Outcome,
		AutoGenerated: l.AutoGenerated,
		Priority:      l.Priority,
		Score:         l.Score,
		CreatedAt:     l.CreatedAt,
	}
}

func (d *caseLogDoc) toModel() *model.CaseLog {
	actions := make([]types.Action, 0, len(d.Actions))
	for _, a := range d.Actions {
		actions = append(actions, types.Action(a))
	}
	return &model.CaseLog{
		ID:            d.ID,
		ReportID:      types.ReportID(d.ReportID),
		ReporterID:    types.UserID(d.ReporterID),
		TargetUserID:  types.UserID(d.TargetUserID),
		ChannelID:     types.ChannelID(d.ChannelID),
		Text:          d.Text,
		Category:      types.Category(d.Category),
		Actions:       actions,
		Outcome:       d.Outcome,
		AutoGenerated: d.AutoGenerated,
		Priority:      d.Priority,
		Score:         d.Score,
		CreatedAt:     d.CreatedAt,
	}
}

func (r *caseLogRepository) Put(ctx context.Context, log *model.CaseLog) error {
	if _, err := r.collection().Doc(log.ID).Set(ctx, toCaseLogDoc(log)); err != nil {
		return goerr.Wrap(err, "failed to put case log", goerr.V("id", log.ID))
	}
	return nil
}

func (r *caseLogRepository) List(ctx context.Context, limit int) ([]*model.CaseLog, error) {
	query := r.collection().OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var logs []*model.CaseLog
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate case logs")
		}

		var d caseLogDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode case log", goerr.V("doc_id", doc.Ref.ID))
		}
		logs = append(logs, d.toModel())
	}

	return logs, nil
}
