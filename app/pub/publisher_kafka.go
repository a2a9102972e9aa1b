package pub

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Shopify/sarama"
	"github.com/deathowl/go-metrics-prometheus"
	"github.com/eapache/go-resiliency/breaker"
	"github.com/linkedin/goavro"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/picassol/pixeld/app/config"
)

const (
	KafkaBrokerSep = ";"

	maxConnectAttempts = 5
	maxPublishAttempts = 5
)

type KafkaActionPublisher struct {
	issuedActionCodec *goavro.Codec

	topic    string
	producer sarama.SyncProducer
	logger   log.Logger
}

func newSaramaConfig(cfg *config.PublicationConfig) (saramaCfg *sarama.Config, err error) {
	saramaCfg = sarama.NewConfig()
	if saramaCfg.Version, err = sarama.ParseKafkaVersion(cfg.KafkaVersion); err != nil {
		return nil, errors.Wrap(err, "invalid kafka version")
	}
	if saramaCfg.ClientID, err = os.Hostname(); err != nil {
		return nil, err
	}

	saramaCfg.Producer.Partitioner = sarama.NewHashPartitioner
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.Retry.Max = 20
	saramaCfg.Producer.Compression = sarama.CompressionGZIP

	// keep messages of one requester in order
	saramaCfg.Net.MaxOpenRequests = 1
	return saramaCfg, nil
}

func (publisher *KafkaActionPublisher) prepareMessage(
	msgId string,
	timeStamp int64,
	msgTpe msgType,
	message []byte) *sarama.ProducerMessage {
	msg := &sarama.ProducerMessage{
		Topic:     publisher.topic,
		Partition: -1,
		Key:       sarama.StringEncoder(fmt.Sprintf("%s_%d_%s", msgId, timeStamp, msgTpe.String())),
		Value:     sarama.ByteEncoder(message),
	}

	return msg
}

func (publisher *KafkaActionPublisher) publish(avroMessage AvroOrJsonMsg, tpe msgType, timestamp int64) {
	msg, err := publisher.marshal(avroMessage, tpe)
	if err != nil {
		publisher.logger.Error("failed to publish", "topic", publisher.topic, "msg", avroMessage.String(), "err", err)
		return
	}
	var msgId string
	if action, ok := avroMessage.(*IssuedAction); ok {
		msgId = action.Requester
	}
	kafkaMsg := publisher.prepareMessage(msgId, timestamp, tpe, msg)
	if partition, offset, err := publisher.publishWithRetry(kafkaMsg); err == nil {
		publisher.logger.Info("published", "topic", publisher.topic, "msg", avroMessage.String(), "offset", offset, "partition", partition)
	} else {
		publisher.logger.Error("failed to publish", "topic", publisher.topic, "msg", avroMessage.String(), "err", err)
	}
}

func (publisher *KafkaActionPublisher) Stop() {
	publisher.logger.Debug("start to stop KafkaActionPublisher")
	// nil check because this method would be called when we failed to create producer
	if publisher.producer != nil {
		if err := publisher.producer.Close(); err != nil {
			publisher.logger.Error("failed to stop producer for topic", "topic", publisher.topic, "err", err)
		}
	}
	publisher.logger.Debug("finished stop KafkaActionPublisher")
}

func isRetriable(err error) bool {
	return err == sarama.ErrOutOfBrokers || err == breaker.ErrBreakerOpen
}

// retry on retriable errors with exponential back off, the abnormal situation should be reported by prometheus alarm
func connectWithRetry(
	hostports []string,
	config *sarama.Config,
	logger log.Logger) (producer sarama.SyncProducer, err error) {
	backOffInSeconds := time.Duration(1)

	for attempt := 1; ; attempt++ {
		if producer, err = sarama.NewSyncProducer(hostports, config); isRetriable(err) && attempt < maxConnectAttempts {
			backOffInSeconds <<= 1
			logger.Error("encountered retriable error, retrying...", "after", backOffInSeconds, "err", err)
			time.Sleep(backOffInSeconds * time.Second)
		} else {
			return
		}
	}
}

func (publisher *KafkaActionPublisher) publishWithRetry(
	message *sarama.ProducerMessage) (partition int32, offset int64, err error) {
	backOffInSeconds := time.Duration(1)

	for attempt := 1; ; attempt++ {
		if partition, offset, err = publisher.producer.SendMessage(message); isRetriable(err) && attempt < maxPublishAttempts {
			backOffInSeconds <<= 1
			publisher.logger.Error("encountered retriable error, retrying...", "after", backOffInSeconds, "err", err)
			time.Sleep(backOffInSeconds * time.Second)
		} else {
			return
		}
	}
}

func (publisher *KafkaActionPublisher) marshal(msg AvroOrJsonMsg, tpe msgType) ([]byte, error) {
	native := msg.ToNativeMap()
	publisher.logger.Debug("msgDetail", "msg", native)
	var codec *goavro.Codec
	switch tpe {
	case issuedActionTpe:
		codec = publisher.issuedActionCodec
	default:
		return nil, errors.Errorf("doesn't support marshal kafka msg tpe: %s", tpe.String())
	}
	bb, err := codec.BinaryFromNative(nil, native)
	if err != nil {
		publisher.logger.Error("failed to serialize message", "msg", msg, "err", err)
	}
	return bb, err
}

func newKafkaActionPublisher(producer sarama.SyncProducer, topic string, logger log.Logger) (*KafkaActionPublisher, error) {
	codec, err := goavro.NewCodec(issuedActionSchema)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize avro codec")
	}
	return &KafkaActionPublisher{
		issuedActionCodec: codec,
		topic:             topic,
		producer:          producer,
		logger:            logger,
	}, nil
}

func NewKafkaActionPublisher(
	cfg *config.PublicationConfig,
	logger log.Logger) (*KafkaActionPublisher, error) {
	sarama.Logger = saramaLogger{logger}

	saramaCfg, err := newSaramaConfig(cfg)
	if err != nil {
		return nil, err
	}
	producer, err := connectWithRetry(strings.Split(cfg.ActionKafka, KafkaBrokerSep), saramaCfg, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create issued action producer")
	}

	// sarama keeps its own go-metrics registry, mirror it into the default
	// prometheus registerer so it is served next to everything else
	pClient := prometheusmetrics.NewPrometheusProvider(
		saramaCfg.MetricRegistry,
		"pixeld",
		"publication",
		prometheus.DefaultRegisterer,
		1*time.Second)
	go pClient.UpdatePrometheusMetrics()

	return newKafkaActionPublisher(producer, cfg.ActionTopic, logger)
}
