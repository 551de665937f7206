package shutdown

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// CreateGracefulShutdownChannel returns a channel that receives SIGTERM and
// SIGINT.
func CreateGracefulShutdownChannel() chan os.Signal {
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGTERM, syscall.SIGINT)
	return gracefulShutdown
}

// ListenForShutdown blocks until a signal arrives, runs signalHandler, then
// waits drainTime for in-flight work before closing done.
func ListenForShutdown(
	signalChan chan os.Signal,
	done chan bool,
	signalHandler func(),
	drainTime time.Duration,
	l *zap.Logger,
) {
	sig := <-signalChan
	l.Sugar().Infof("caught signal %v", sig)

	signalHandler()

	l.Sugar().Infof("Waiting %v seconds to exit...", drainTime.Seconds())
	time.Sleep(drainTime)

	l.Sugar().Info("Exiting")
	close(done)
}
