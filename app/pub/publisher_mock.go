package pub

import (
	"sync"

	"github.com/pkg/errors"
)

// MockActionPublisher keeps everything it is asked to publish in memory.
type MockActionPublisher struct {
	Lock            sync.Mutex
	ActionPublished []IssuedAction
	Stopped         bool
}

func (publisher *MockActionPublisher) publish(msg AvroOrJsonMsg, tpe msgType, timestamp int64) {
	publisher.Lock.Lock()
	defer publisher.Lock.Unlock()

	switch tpe {
	case issuedActionTpe:
		publisher.ActionPublished = append(publisher.ActionPublished, *msg.(*IssuedAction))
	default:
		panic(errors.Errorf("does not support type %s", tpe.String()))
	}
}

func (publisher *MockActionPublisher) Published() []IssuedAction {
	publisher.Lock.Lock()
	defer publisher.Lock.Unlock()
	return append([]IssuedAction(nil), publisher.ActionPublished...)
}

func (publisher *MockActionPublisher) Stop() {
	publisher.Lock.Lock()
	defer publisher.Lock.Unlock()
	publisher.Stopped = true
}

func NewMockActionPublisher() *MockActionPublisher {
	return &MockActionPublisher{
		ActionPublished: make([]IssuedAction, 0),
	}
}
