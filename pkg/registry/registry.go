// Package registry owns the set of open reports and the moderation queue.
// It is mutated only by the session coordinator, which serializes all event
// handling, so it carries no locking of its own.
package registry

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
	"github.com/modsec-lab/aegis/pkg/utils/logging"
)

// ThresholdConfig controls the adaptive auto-flag threshold
type ThresholdConfig struct {
	Initial float64
	Alpha   float64
	Floor   float64
}

// DefaultThresholdConfig returns the stock threshold parameters
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{
		Initial: 0.7,
		Alpha:   0.1,
		Floor:   0.5,
	}
}

// Registry holds queued reports keyed by reporting user, the priority-sorted
// moderation queue snapshot, and the adaptive threshold state.
type Registry struct {
	oracle     interfaces.ScoreClient
	normalizer interfaces.Normalizer

	reports map[types.UserID][]*model.Report
	order   []types.UserID // reporter keys in first-seen order

	queue []*model.Report

	threshold ThresholdConfig
	current   float64
}

// New creates an empty registry
func New(oracle interfaces.ScoreClient, normalizer interfaces.Normalizer, threshold ThresholdConfig) *Registry {
	return &Registry{
		oracle:     oracle,
		normalizer: normalizer,
		reports:    make(map[types.UserID][]*model.Report),
		threshold:  threshold,
		current:    threshold.Initial,
	}
}

// Add registers a queued report under its reporter
func (r *Registry) Add(report *model.Report) error {
	if !report.Queued() {
		return goerr.New("only reports awaiting moderation can be registered",
			goerr.V("report_id", report.ID), goerr.V("status", report.Status))
	}
	key := report.ReporterID
	if _, ok := r.reports[key]; !ok {
		r.order = append(r.order, key)
	}
	r.reports[key] = append(r.reports[key], report)
	return nil
}

// Len returns the number of open queued reports
func (r *Registry) Len() int {
	n := 0
	for _, list := range r.reports {
		n += len(list)
	}
	return n
}

// QueueLen returns the number of reports remaining in the current snapshot
func (r *Registry) QueueLen() int {
	return len(r.queue)
}

// BuildQueue computes a fresh priority-sorted snapshot of all queued reports.
// For each report the target text is normalized and scored, and the scaled
// composite is recorded on the report. Scoring failures are recoverable: the
// report keeps its previous score and stays in the queue.
func (r *Registry) BuildQueue(ctx context.Context) int {
	logger := logging.From(ctx)

	var snapshot []*model.Report
	for _, key := range r.order {
		snapshot = append(snapshot, r.reports[key]...)
	}

	for _, report := range snapshot {
		if report.Target == nil {
			continue
		}
		score, err := r.scoreText(ctx, report.Target.Text)
		if err != nil {
			logger.Warn("failed to score report for queue ordering, keeping previous score",
				"report_id", report.ID, "error", err.Error())
			continue
		}
		report.Score = score
	}

	// Descending by reporter-answered priority, oracle score breaks ties.
	// SliceStable keeps insertion order for full ties.
	sort.SliceStable(snapshot, func(i, j int) bool {
		if snapshot[i].Priority != snapshot[j].Priority {
			return snapshot[i].Priority > snapshot[j].Priority
		}
		return snapshot[i].Score > snapshot[j].Score
	})

	r.queue = snapshot
	return len(snapshot)
}

// PopNext removes and returns the head of the snapshot, also removing the
// report from its reporter's list. Returns nil when the snapshot is empty.
func (r *Registry) PopNext() *model.Report {
	for len(r.queue) > 0 {
		head := r.queue[0]
		r.queue = r.queue[1:]
		if r.remove(head) {
			return head
		}
		// Already removed from the registry (e.g. cancelled); skip
	}
	return nil
}

// Remove drops a report from the registry without consuming the snapshot
func (r *Registry) Remove(report *model.Report) bool {
	return r.remove(report)
}

func (r *Registry) remove(report *model.Report) bool {
	list, ok := r.reports[report.ReporterID]
	if !ok {
		return false
	}
	for i, candidate := range list {
		if candidate.ID == report.ID {
			r.reports[report.ReporterID] = append(list[:i], list[i+1:]...)
			if len(r.reports[report.ReporterID]) == 0 {
				delete(r.reports, report.ReporterID)
				r.dropKey(report.ReporterID)
			}
			return true
		}
	}
	return false
}

func (r *Registry) dropKey(key types.UserID) {
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// Threshold returns the current auto-flag threshold
func (r *Registry) Threshold() float64 {
	return r.current
}

// Adapt updates the threshold after an adjudicated case that resulted in an
// action. score is the report's scaled composite (0-100). The exponential
// moving average tracks confirmed-harmful score levels, floored to avoid
// runaway sensitivity.
func (r *Registry) Adapt(score float64) float64 {
	next := (1-r.threshold.Alpha)*r.current + r.threshold.Alpha*(score/100)
	if next < r.threshold.Floor {
		next = r.threshold.Floor
	}
	r.current = next
	return next
}

// ScoreText normalizes and scores arbitrary text, returning the scaled
// composite (0-100) together with the normalized text.
func (r *Registry) ScoreText(ctx context.Context, text string) (string, float64, error) {
	normalized, err := r.normalizer.Normalize(ctx, text)
	if err != nil {
		return "", 0, goerr.Wrap(err, "failed to normalize text")
	}
	scores, err := r.oracle.Analyze(ctx, normalized)
	if err != nil {
		return "", 0, goerr.Wrap(err, "failed to score text")
	}
	return normalized, 100 * scores.Composite(), nil
}

func (r *Registry) scoreText(ctx context.Context, text string) (float64, error) {
	_, score, err := r.ScoreText(ctx, text)
	return score, err
}
