package pub

import (
	"fmt"

	tmlog "github.com/tendermint/tendermint/libs/log"
)

// this delegate sarama.StdLogger to the tendermint logger
type saramaLogger struct {
	tmlog.Logger
}

func (slogger saramaLogger) Print(v ...interface{}) {
	slogger.Debug(fmt.Sprint(v...))
}

func (slogger saramaLogger) Printf(format string, v ...interface{}) {
	slogger.Debug(fmt.Sprintf(format, v...))
}

func (slogger saramaLogger) Println(v ...interface{}) {
	slogger.Debug(fmt.Sprintln(v...))
}
