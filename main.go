package main

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/recurring-server/api"
	"github.com/carson-networks/recurring-server/internal/config"
	"github.com/carson-networks/recurring-server/internal/engine"
	"github.com/carson-networks/recurring-server/internal/logging"
	"github.com/carson-networks/recurring-server/internal/operator"
	"github.com/carson-networks/recurring-server/internal/service"
	"github.com/carson-networks/recurring-server/internal/storage"
)

func main() {
	logger := logging.SetupLogging()
	logrus.Info("recurring-server starting")

	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	dbStorage := storage.NewStorage(envConfig)
	svc := service.NewService(dbStorage)

	// One worker keeps generation steps strictly ordered per run.
	delegator := operator.NewOperatorDelegator(dbStorage, 1)
	delegator.Start()
	defer delegator.Stop()

	eng := engine.New(dbStorage, delegator, logger)

	wg := sync.WaitGroup{}
	wg.Add(1)

	go func() {
		httpRest := api.Rest{
			Logger:  logger,
			Port:    envConfig.HTTPPort,
			Service: svc,
			Engine:  eng,
		}
		httpRest.Serve()
	}()

	wg.Wait()
}
