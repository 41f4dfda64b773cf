package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/relay/internal/domain"
)

type saver interface {
	Save(ctx context.Context, room domain.RoomID, u domain.TaskUpdate) (bool, error)
}

type PersistOptions struct {
	Queue       int
	MaxAttempts int
	Backoff     time.Duration
	// DrainTimeout bounds how long Run keeps flushing after its context ends.
	DrainTimeout time.Duration
}

type job struct {
	room   domain.RoomID
	update domain.TaskUpdate
}

// Persister implements core.BoardSink. Persist only enqueues; Run drains
// the queue on one goroutine so updates reach the store in the order the
// rooms reconciled them.
type Persister struct {
	store saver
	queue chan job
	opts  PersistOptions
}

func NewPersister(s saver, opts PersistOptions) *Persister {
	if opts.Queue <= 0 {
		opts.Queue = 1024
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = 2 * time.Second
	}
	return &Persister{store: s, queue: make(chan job, opts.Queue), opts: opts}
}

func (p *Persister) Persist(room domain.RoomID, u domain.TaskUpdate) {
	select {
	case p.queue <- job{room: room, update: u}:
	default:
		log.Warn().
			Str("module", "store.persister").
			Str("room", string(room)).
			Str("task", string(u.TaskID)).
			Uint64("revision", u.Revision).
			Msg("persist queue full, dropping update")
	}
}

// Pending reports how many updates wait in the queue.
func (p *Persister) Pending() int { return len(p.queue) }

func (p *Persister) Run(ctx context.Context) error {
	log.Info().Str("module", "store.persister").Int("queue", cap(p.queue)).Msg("persister started")
	for {
		// shutdown takes priority so no job is started on a cancelled context
		if ctx.Err() != nil {
			p.drain(nil)
			return nil
		}
		select {
		case <-ctx.Done():
		case j := <-p.queue:
			if !p.save(ctx, j) {
				p.drain(&j)
				return nil
			}
		}
	}
}

// drain flushes what is left in the queue under DrainTimeout, starting with
// interrupted, the job whose retries were cut short by shutdown.
func (p *Persister) drain(interrupted *job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.opts.DrainTimeout)
	defer cancel()

	pending := p.Pending()
	if interrupted != nil {
		pending++
	}
	log.Info().Str("module", "store.persister").Int("pending", pending).Msg("draining persist queue")

	if interrupted != nil && !p.save(ctx, *interrupted) {
		p.abandon()
		return
	}
	for {
		select {
		case j := <-p.queue:
			if !p.save(ctx, j) {
				p.abandon()
				return
			}
		default:
			log.Info().Str("module", "store.persister").Msg("persister stopped")
			return
		}
	}
}

func (p *Persister) abandon() {
	log.Error().Str("module", "store.persister").Int("lost", p.Pending()+1).Msg("drain timed out, dropping updates")
}

// save retries j with exponential backoff. It reports false when ctx ended
// before the job was settled, so the caller can hand it on.
func (p *Persister) save(ctx context.Context, j job) bool {
	delay := p.opts.Backoff
	for attempt := 1; ; attempt++ {
		applied, err := p.store.Save(ctx, j.room, j.update)
		if err == nil {
			if !applied {
				log.Debug().Str("module", "store.persister").Str("room", string(j.room)).Str("task", string(j.update.TaskID)).Msg("store already newer")
			}
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		if attempt >= p.opts.MaxAttempts {
			log.Error().Err(err).
				Str("module", "store.persister").
				Str("room", string(j.room)).
				Str("task", string(j.update.TaskID)).
				Int("attempts", attempt).
				Msg("giving up on update")
			return true
		}
		log.Warn().Err(err).Str("module", "store.persister").Int("attempt", attempt).Dur("retry_in", delay).Msg("persist failed")
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		delay *= 2
	}
}
