// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// completedRetention is how long a completed tournament stays readable in
// memory after its durable save has been triggered.
const completedRetention = 30 * time.Minute

// StartRegistrySweeper evicts completed tournaments from the in-memory
// registry once they are past retention. The durable records remain the
// only copy after that.
func (s *TournamentService) StartRegistrySweeper() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			if n := s.evictCompleted(completedRetention); n > 0 {
				log.Printf("[Sweeper] evicted %d completed tournament(s) from registry", n)
			}
		}),
	)
}
