package logger

import (
	"go.uber.org/zap"
)

// Log defaults to a no-op logger so library code and tests can log before
// InitLogger runs at process start.
var Log = zap.NewNop()

func InitLogger() {
	var err error
	Log, err = zap.NewProduction()
	if err != nil {
		panic("Failed to init logger: " + err.Error())
	}
}

func SyncLogger() {
	_ = Log.Sync()
}
