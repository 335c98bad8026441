// Package scheduler runs the periodic credit refill: every account that
// has spent below the floor gets topped back up, so casual users are
// never locked out permanently.
package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/coasterfreak/opengpt/internal/db"
)

type Refill struct {
	cron  *cron.Cron
	db    *db.DB
	floor int64
}

func New(database *db.DB, floor int64) *Refill {
	return &Refill{cron: cron.New(), db: database, floor: floor}
}

// Start registers the refill job under the given cron spec and starts
// the scheduler.
func (r *Refill) Start(spec string) error {
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return fmt.Errorf("scheduling credit refill: %w", err)
	}
	r.cron.Start()
	return nil
}

func (r *Refill) Stop() {
	r.cron.Stop()
}

func (r *Refill) run() {
	n, err := r.db.TopUpBelow(r.floor)
	if err != nil {
		log.Printf("credit refill failed: %v", err)
		return
	}
	log.Printf("credit refill: %d accounts topped up to %d", n, r.floor)
}
