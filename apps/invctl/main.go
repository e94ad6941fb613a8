package main

import (
	"log"
	"os"

	"github.com/kymanga/vifaa/core"
	logsvc "github.com/kymanga/vifaa/services/logger"
	notifsvc "github.com/kymanga/vifaa/services/notifier"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "INVCTL : ", log.LstdFlags|log.Lmicroseconds)

	conf := core.NewConfig()
	cli := commandLine{
		conf:     conf,
		out:      os.Stdout,
		notifier: notifsvc.NewConsoleNotifier(logger),
		logger:   newAppLogger(logger, conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

// newAppLogger reports to rollbar when a token is configured, falling back to
// plain std logging otherwise (local dev, demo mode).
func newAppLogger(std *log.Logger, conf *core.Config) core.Logger {
	if conf.RollbarToken != "" {
		rollbarLogger := logsvc.NewRollbarLogger(std, conf)
		rollbarLogger.Enable(!conf.Debug)
		return rollbarLogger
	}
	return logsvc.NewStdLogger(std)
}
