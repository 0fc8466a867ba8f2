package insight

import (
	"log/slog"
	"time"

	"github.com/salasvega/easyvinted8-sub003/db"
)

// regenDelay gives the store a moment to settle before the caches are rebuilt
// against the post-action inventory.
const regenDelay = 2 * time.Second

type RegenScheduler interface {
	Schedule(ownerID string)
}

// QueueScheduler pushes the owner onto the redis regeneration queue after a
// short delay. Fire-and-forget: a lost push only means the next interactive
// load regenerates via the staleness rule instead.
type QueueScheduler struct {
	push  func(ownerID string) error
	delay time.Duration
}

func NewQueueScheduler() *QueueScheduler {
	return &QueueScheduler{push: db.PushRegeneration, delay: regenDelay}
}

func (s *QueueScheduler) Schedule(ownerID string) {
	time.AfterFunc(s.delay, func() {
		if err := s.push(ownerID); err != nil {
			slog.Error("failed to enqueue insight regeneration", "owner_id", ownerID, "error", err)
		}
	})
}
