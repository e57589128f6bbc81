package main

import (
	"fmt"
	"os"
	"time"

	"binarytrader/cmd/trader"
	"binarytrader/src/logging"

	logger "github.com/sirupsen/logrus"
)

var APP_NAME = os.Getenv("APP_NAME")

func main() {
	closer := logging.Setup(logging.GetConfig())
	defer closer.Close()
	defer handlePanic()

	session := &trader.Session{
		Log:   logger.WithField("app", APP_NAME),
		Serve: true,
	}
	if err := session.Start(); err != nil {
		logger.WithError(err).Fatal("Trading session failed")
	}
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
		//nolint
		time.Sleep(time.Second * 5)
	}
}
