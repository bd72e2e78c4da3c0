// workers/result_sink.go
package workers

import (
	"context"
	"log"

	"arcade-arena/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// submission is one unit of durable work queued by the game side.
type submission struct {
	match      *models.MatchRecord
	tournament *models.TournamentRecord
	matches    []models.MatchRecord
}

// ResultSinkWorker drains match and tournament records into Postgres.
// Writes are upserts keyed on the primary id, so a repeated identical
// submission is harmless. The queue is bounded; when it is full the
// submission is dropped with a log line — gameplay never waits on storage.
type ResultSinkWorker struct {
	db    *gorm.DB
	queue chan submission
}

func NewResultSinkWorker(db *gorm.DB) *ResultSinkWorker {
	return &ResultSinkWorker{
		db:    db,
		queue: make(chan submission, 256),
	}
}

func (w *ResultSinkWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Result Sink Worker (match results → postgres)…")
	go w.run(ctx)
}

func (w *ResultSinkWorker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("[ResultSink] context cancelled, draining stopped")
			return
		case sub := <-w.queue:
			w.process(sub)
		}
	}
}

func (w *ResultSinkWorker) process(sub submission) {
	if sub.match != nil {
		if err := w.upsertMatch(*sub.match); err != nil {
			log.Printf("⚠️ [ResultSink] match %s upsert failed: %v", sub.match.ID, err)
		}
	}
	if sub.tournament != nil {
		if err := w.upsertTournament(*sub.tournament, sub.matches); err != nil {
			log.Printf("⚠️ [ResultSink] tournament %s save failed: %v", sub.tournament.ID, err)
		}
	}
}

func (w *ResultSinkWorker) upsertMatch(rec models.MatchRecord) error {
	return w.db.Transaction(func(tx *gorm.DB) error {
		logs := rec.ScoreLogs
		rec.ScoreLogs = nil
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&rec).Error; err != nil {
			return err
		}
		if len(logs) == 0 {
			return nil
		}
		// Replace, don't append: a re-submission carries the full log.
		if err := tx.Where("match_record_id = ?", rec.ID).Delete(&models.ScoreLog{}).Error; err != nil {
			return err
		}
		return tx.Create(&logs).Error
	})
}

func (w *ResultSinkWorker) upsertTournament(rec models.TournamentRecord, matches []models.MatchRecord) error {
	return w.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&rec).Error; err != nil {
			return err
		}
		for i := range matches {
			m := matches[i]
			m.ScoreLogs = nil
			// Bracket columns only — the live room already wrote the rich
			// record (score logs included) for each match.
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"tournament_id", "round", "winner_id", "left_score", "right_score",
				}),
			}).Create(&m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SubmitMatch implements services.ResultSink. Non-blocking.
func (w *ResultSinkWorker) SubmitMatch(rec models.MatchRecord) error {
	select {
	case w.queue <- submission{match: &rec}:
		return nil
	default:
		return ErrQueueFull
	}
}

// SaveTournament implements services.ResultSink. Non-blocking.
func (w *ResultSinkWorker) SaveTournament(rec models.TournamentRecord, matches []models.MatchRecord) error {
	select {
	case w.queue <- submission{tournament: &rec, matches: matches}:
		return nil
	default:
		return ErrQueueFull
	}
}
