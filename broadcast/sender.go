package broadcast

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cskr/pubsub"
	"github.com/dilshat/contacts-admin/model"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	OUT = "out"
)

var (
	ErrStopped   = errors.New("broadcast sender stopped")
	ErrQueueFull = errors.New("broadcast queue is full")
)

// scheduledRetry is how long a due scheduled broadcast waits for queue room.
const scheduledRetry = time.Second

type Sender interface {
	Start()
	//Stop drops scheduled and queued broadcasts and waits for the worker to exit
	Stop()
	//Send queues msg for delivery, deferring it until msg.ScheduleAt when that is in the future.
	//It never blocks: ErrQueueFull is returned when the queue has no room.
	Send(msg model.Broadcast) error
}

type sender struct {
	deliverer Deliverer
	ps        *pubsub.PubSub
	out       chan interface{}
	limiter   *rate.Limiter
	now       func() time.Time
	capacity  int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
	//queued counts broadcasts published but not yet taken by the worker.
	//Keeping it within capacity means Pub never blocks.
	queued  int
	timers  map[string]*time.Timer
}

// NewSender delivers at most tps messages per second through deliverer.
// queue is the capacity of the outgoing channel.
func NewSender(deliverer Deliverer, tps, queue int) Sender {
	ps := pubsub.New(queue)
	ctx, cancel := context.WithCancel(context.Background())
	return &sender{
		deliverer: deliverer,
		ps:        ps,
		out:       ps.Sub(OUT),
		limiter:   rate.NewLimiter(rate.Limit(tps), 1),
		now:       time.Now,
		capacity:  queue,
		ctx:       ctx,
		cancel:    cancel,
		timers:    make(map[string]*time.Timer),
	}
}

func (s *sender) Start() {
	s.wg.Add(1)
	go s.processOutgoing()
}

func (s *sender) Stop() {
	//release a worker waiting on the limiter or a deliverer first
	s.cancel()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.ps.Shutdown()
	s.wg.Wait()
}

func (s *sender) Send(msg model.Broadcast) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}

	now := s.now()
	if !msg.Due(now) {
		s.timers[msg.Id] = time.AfterFunc(msg.ScheduleAt.Sub(now), func() {
			s.publishScheduled(msg)
		})
		zap.L().Info("Broadcast scheduled",
			zap.String("id", msg.Id),
			zap.Time("at", msg.ScheduleAt))
		return nil
	}

	if s.queued >= s.capacity {
		return ErrQueueFull
	}
	s.publish(msg)
	return nil
}

func (s *sender) publishScheduled(msg model.Broadcast) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		delete(s.timers, msg.Id)
		return
	}
	if s.queued >= s.capacity {
		zap.L().Warn("Broadcast queue full, retrying scheduled broadcast", zap.String("id", msg.Id))
		s.timers[msg.Id] = time.AfterFunc(scheduledRetry, func() {
			s.publishScheduled(msg)
		})
		return
	}

	delete(s.timers, msg.Id)
	s.publish(msg)
}

// publish must be called with s.mu held and room in the queue.
func (s *sender) publish(msg model.Broadcast) {
	s.queued++
	s.ps.Pub(msg, OUT)
}

func (s *sender) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *sender) processOutgoing() {
	defer s.wg.Done()

	for item := range s.out {
		s.mu.Lock()
		s.queued--
		s.mu.Unlock()

		msg, ok := item.(model.Broadcast)
		if !ok {
			continue
		}

		for _, phone := range msg.Phones {
			//impose tps limit
			if err := s.limiter.Wait(s.ctx); err != nil {
				zap.L().Warn("Broadcast dropped", zap.String("id", msg.Id), zap.Error(err))
				break
			}

			err := s.deliverer.Deliver(s.ctx, phone, msg.Text)
			if err != nil {
				zap.L().Error("Error delivering message",
					zap.String("id", msg.Id),
					zap.String("phone", phone),
					zap.Error(err))
			}
		}
	}
}
