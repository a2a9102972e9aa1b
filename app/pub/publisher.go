package pub

import (
	"sync"
	"time"

	tmlog "github.com/tendermint/tendermint/libs/log"

	"github.com/picassol/pixeld/app/config"
)

type ActionPublisher interface {
	publish(msg AvroOrJsonMsg, tpe msgType, timestamp int64)
	Stop()
}

// Publication queues issued actions from request handlers and hands them
// to a publisher on its own goroutine, so a slow broker never holds up a
// request.
type Publication struct {
	publisher ActionPublisher
	metrics   *Metrics
	logger    tmlog.Logger

	toPublishCh chan IssuedAction
	done        chan struct{}

	mtx    sync.Mutex
	isLive bool
}

func NewPublication(
	publisher ActionPublisher,
	metrics *Metrics,
	logger tmlog.Logger,
	cfg *config.PublicationConfig) *Publication {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &Publication{
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
		toPublishCh: make(chan IssuedAction, cfg.PublicationChannelSize),
		done:        make(chan struct{}),
	}
}

func (p *Publication) Start() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.isLive {
		return
	}
	p.isLive = true
	go p.publishLoop()
}

// Enqueue schedules msg for publication. It never blocks: when the queue is
// full or publication has stopped the message is dropped and false returned.
func (p *Publication) Enqueue(msg IssuedAction) bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if !p.isLive {
		return false
	}
	select {
	case p.toPublishCh <- msg:
		return true
	default:
		p.metrics.NumDropped.Add(1)
		p.logger.Error("publication queue is full, dropping issued action", "msg", msg.String())
		return false
	}
}

func (p *Publication) publishLoop() {
	defer close(p.done)
	for msg := range p.toPublishCh {
		p.metrics.PublicationQueueSize.Set(float64(len(p.toPublishCh)))
		msg := msg
		duration := Timer(p.logger, "publish issued action", func() {
			p.publisher.publish(&msg, issuedActionTpe, msg.Timestamp)
		})
		p.metrics.PublishTimeMs.Set(float64(duration))
		p.metrics.NumPublished.Add(1)
	}
}

// Stop drains queued messages into the publisher, then stops it.
func (p *Publication) Stop() {
	p.mtx.Lock()
	if !p.isLive {
		p.mtx.Unlock()
		p.logger.Error("publication module has already been stopped")
		return
	}
	p.isLive = false
	close(p.toPublishCh)
	p.mtx.Unlock()

	<-p.done
	p.publisher.Stop()
}

func Timer(logger tmlog.Logger, description string, op func()) (durationMs int64) {
	start := time.Now()
	op()
	durationMs = time.Since(start).Nanoseconds() / int64(time.Millisecond)
	logger.Debug(description, "durationMs", durationMs)
	return durationMs
}
