package pub

import (
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/picassol/pixeld/app/config"
)

// NewActionPublisher builds the publisher chain selected by cfg. It returns
// nil when nothing should be published.
func NewActionPublisher(homeDir string, cfg *config.PublicationConfig, logger log.Logger) (ActionPublisher, error) {
	if !cfg.ShouldPublishAny() {
		return nil, nil
	}
	var publishers []ActionPublisher
	if cfg.PublishKafka {
		kafka, err := NewKafkaActionPublisher(cfg, logger.With("publisher", "kafka"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create kafka publisher")
		}
		publishers = append(publishers, kafka)
	}
	if cfg.PublishLocal {
		publishers = append(publishers, NewLocalActionPublisher(homeDir, logger.With("publisher", "local"), cfg))
	}
	if len(publishers) == 1 {
		return publishers[0], nil
	}
	return NewAggregatedActionPublisher(publishers...), nil
}
