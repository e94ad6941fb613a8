package main

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kymanga/vifaa/core"
	logsvc "github.com/kymanga/vifaa/services/logger"
)

func Test_newAppLogger(t *testing.T) {
	std := log.New(io.Discard, "", 0)

	// no token configured: plain std logging
	appLogger := newAppLogger(std, &core.Config{Debug: true})
	assert.IsType(t, &logsvc.StdLogger{}, appLogger)

	// token configured: rollbar reporting
	conf := &core.Config{Debug: true, Env: "TEST", RollbarToken: "sekret"}
	appLogger = newAppLogger(std, conf)
	assert.IsType(t, &logsvc.RollbarLogger{}, appLogger)
}
