package registry_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
	"github.com/modsec-lab/aegis/pkg/registry"
)

type fakeOracle struct {
	scores map[string]model.Scores
	err    error
}

func (f *fakeOracle) Analyze(ctx context.Context, text string) (model.Scores, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.scores[text]; ok {
		return s, nil
	}
	return model.Scores{model.AttrThreat: 0.1, model.AttrToxicity: 0.1}, nil
}

type identityNormalizer struct{}

func (identityNormalizer) Normalize(ctx context.Context, text string) (string, error) {
	return text, nil
}

func queuedReport(reporter types.UserID, priority int, text string) *model.Report {
	r := model.NewReport(reporter, string(reporter), "D-"+types.ChannelID(reporter))
	r.Target = &model.SourceMessage{
		ChannelID:  "C001",
		AuthorID:   "U999",
		AuthorName: "offender",
		Text:       text,
	}
	r.Priority = priority
	r.Status = types.ReportAwaitingModeration
	return r
}

func TestRegistryQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("higher answer priority sorts first regardless of oracle score", func(t *testing.T) {
		oracle := &fakeOracle{scores: map[string]model.Scores{
			"severe": {model.AttrThreat: 0.2},
			"mild":   {model.AttrThreat: 0.9},
		}}
		reg := registry.New(oracle, identityNormalizer{}, registry.DefaultThresholdConfig())

		mild := queuedReport("U002", 2, "mild")
		severe := queuedReport("U001", 7, "severe")
		gt.NoError(t, reg.Add(mild))
		gt.NoError(t, reg.Add(severe))

		n := reg.BuildQueue(ctx)
		gt.Number(t, n).Equal(2)

		first := reg.PopNext()
		gt.Value(t, first.ID).Equal(severe.ID)
		second := reg.PopNext()
		gt.Value(t, second.ID).Equal(mild.ID)
		gt.Value(t, reg.PopNext()).Nil()
	})

	t.Run("oracle score breaks priority ties", func(t *testing.T) {
		oracle := &fakeOracle{scores: map[string]model.Scores{
			"hot":  {model.AttrThreat: 0.9, model.AttrToxicity: 0.5, model.AttrThreatExperimental: 0.9},
			"cool": {model.AttrThreat: 0.1},
		}}
		reg := registry.New(oracle, identityNormalizer{}, registry.DefaultThresholdConfig())

		cool := queuedReport("U001", 3, "cool")
		hot := queuedReport("U002", 3, "hot")
		gt.NoError(t, reg.Add(cool))
		gt.NoError(t, reg.Add(hot))

		reg.BuildQueue(ctx)
		gt.Value(t, reg.PopNext().ID).Equal(hot.ID)
	})

	t.Run("snapshot is not reordered by later additions", func(t *testing.T) {
		reg := registry.New(&fakeOracle{}, identityNormalizer{}, registry.DefaultThresholdConfig())

		first := queuedReport("U001", 1, "first")
		gt.NoError(t, reg.Add(first))
		reg.BuildQueue(ctx)

		late := queuedReport("U002", 7, "late")
		gt.NoError(t, reg.Add(late))

		gt.Value(t, reg.PopNext().ID).Equal(first.ID)
		gt.Number(t, reg.QueueLen()).Equal(0)
		// the late report is still registered and appears in the next snapshot
		gt.Number(t, reg.Len()).Equal(1)
		reg.BuildQueue(ctx)
		gt.Value(t, reg.PopNext().ID).Equal(late.ID)
	})

	t.Run("pop prunes the reporter entry once empty", func(t *testing.T) {
		reg := registry.New(&fakeOracle{}, identityNormalizer{}, registry.DefaultThresholdConfig())

		a := queuedReport("U001", 2, "a")
		b := queuedReport("U001", 1, "b")
		gt.NoError(t, reg.Add(a))
		gt.NoError(t, reg.Add(b))
		gt.Number(t, reg.Len()).Equal(2)

		reg.BuildQueue(ctx)
		reg.PopNext()
		gt.Number(t, reg.Len()).Equal(1)
		reg.PopNext()
		gt.Number(t, reg.Len()).Equal(0)
	})

	t.Run("scoring failure keeps report with previous score", func(t *testing.T) {
		reg := registry.New(&fakeOracle{err: goerr.New("oracle down")}, identityNormalizer{}, registry.DefaultThresholdConfig())

		r := queuedReport("U001", 2, "text")
		r.Score = 42
		gt.NoError(t, reg.Add(r))

		n := reg.BuildQueue(ctx)
		gt.Number(t, n).Equal(1)
		popped := reg.PopNext()
		gt.Value(t, popped.Score).Equal(42.0)
	})

	t.Run("rejects report that is not awaiting moderation", func(t *testing.T) {
		reg := registry.New(&fakeOracle{}, identityNormalizer{}, registry.DefaultThresholdConfig())
		r := model.NewReport("U001", "reporter", "D001")
		gt.Error(t, reg.Add(r))
	})

	t.Run("removed report is skipped by the snapshot", func(t *testing.T) {
		reg := registry.New(&fakeOracle{}, identityNormalizer{}, registry.DefaultThresholdConfig())

		a := queuedReport("U001", 2, "a")
		b := queuedReport("U002", 1, "b")
		gt.NoError(t, reg.Add(a))
		gt.NoError(t, reg.Add(b))
		reg.BuildQueue(ctx)

		gt.Bool(t, reg.Remove(a)).True()
		gt.Value(t, reg.PopNext().ID).Equal(b.ID)
	})
}

func TestThreshold(t *testing.T) {
	t.Run("moves toward confirmed score", func(t *testing.T) {
		reg := registry.New(&fakeOracle{}, identityNormalizer{}, registry.DefaultThresholdConfig())
		gt.Value(t, reg.Threshold()).Equal(0.7)

		next := reg.Adapt(90) // confirmed case scored 0.9
		gt.Value(t, next).Equal(0.9*0.7 + 0.1*0.9)
	})

	t.Run("floors at configured minimum", func(t *testing.T) {
		reg := registry.New(&fakeOracle{}, identityNormalizer{}, registry.DefaultThresholdConfig())
		for i := 0; i < 100; i++ {
			reg.Adapt(0)
		}
		gt.Value(t, reg.Threshold()).Equal(0.5)
	})
}
