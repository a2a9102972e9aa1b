package pub

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	tmLogger "github.com/tendermint/tendermint/libs/log"

	"github.com/picassol/pixeld/app/config"
)

// Publish issued actions to the actions dir under the pixeld home,
// each message will be in json format one line in file
// file can be compressed and auto-rotated
type LocalActionPublisher struct {
	fileWriter *lumberjack.Logger
	producer   *log.Logger
	tmLogger   tmLogger.Logger
}

func (publisher *LocalActionPublisher) publish(msg AvroOrJsonMsg, tpe msgType, timestamp int64) {
	if jsonBytes, err := json.Marshal(msg); err == nil {
		if err := publisher.producer.Output(2, fmt.Sprintln(string(jsonBytes))); err != nil {
			publisher.tmLogger.Error("failed to publish msg", "err", err, "timestamp", timestamp, "msg", msg.String())
		}
	} else {
		publisher.tmLogger.Error("failed to publish msg", "err", err, "timestamp", timestamp, "msg", msg.String())
	}
}

func (publisher *LocalActionPublisher) Stop() {
	if err := publisher.fileWriter.Close(); err != nil {
		publisher.tmLogger.Error("failed to close local publisher", "err", err)
	}
	publisher.tmLogger.Info("local publisher stopped")
}

func NewLocalActionPublisher(
	dataPath string,
	tmLogger tmLogger.Logger,
	config *config.PublicationConfig) (publisher *LocalActionPublisher) {
	fileWriter := &lumberjack.Logger{
		Filename: filepath.Join(dataPath, "actions", "actions.json"),
		MaxSize:  config.LocalMaxSize,
		MaxAge:   config.LocalMaxAge,
		Compress: true,
	}
	logger := log.New(fileWriter, "", 0)
	publisher = &LocalActionPublisher{
		fileWriter,
		logger,
		tmLogger,
	}

	return
}
