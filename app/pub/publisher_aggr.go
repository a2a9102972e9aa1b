package pub

type AggregatedActionPublisher struct {
	publishers []ActionPublisher
}

func (publisher *AggregatedActionPublisher) publish(msg AvroOrJsonMsg, tpe msgType, timestamp int64) {
	for _, pub := range publisher.publishers {
		pub.publish(msg, tpe, timestamp)
	}
}

func (publisher *AggregatedActionPublisher) Stop() {
	for _, pub := range publisher.publishers {
		pub.Stop()
	}
}

func NewAggregatedActionPublisher(publishers ...ActionPublisher) (publisher *AggregatedActionPublisher) {
	publisher = &AggregatedActionPublisher{
		publishers,
	}
	return
}
