package api

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/recurring-server/internal/engine"
	"github.com/carson-networks/recurring-server/internal/handlers/v1/recurring"
	"github.com/carson-networks/recurring-server/internal/handlers/v1/status"
	"github.com/carson-networks/recurring-server/internal/handlers/v1/transaction"
	"github.com/carson-networks/recurring-server/internal/logging"
	"github.com/carson-networks/recurring-server/internal/service"
)

type Rest struct {
	Logger  *logrus.Logger
	Port    string
	Service *service.Service
	Engine  *engine.Engine
}

// logDataMiddleware attaches a fresh LogData to every request and emits the
// completion log line once the operation resolves.
func (r *Rest) logDataMiddleware(ctx huma.Context, next func(huma.Context)) {
	logData := logging.NewLogData(r.Logger)
	endTimer := logData.AddTiming("duration")

	ctx = huma.WithContext(ctx, logging.ContextWithLogData(ctx.Context(), logData))
	next(ctx)

	endTimer()
	logData.Log().Infof("Handler.%v.Complete", ctx.Operation().OperationID)
}

func (r *Rest) Serve() {
	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("recurring-server", "1.0.0")
	humaAPI := humago.New(mux, humaConfig)
	humaAPI.UseMiddleware(r.logDataMiddleware)

	recurring.NewCreateTemplateHandler(r.Service.Recurring).Register(humaAPI)
	recurring.NewListTemplatesHandler(r.Service.Recurring).Register(humaAPI)
	recurring.NewUpdateTemplateHandler(r.Service.Recurring).Register(humaAPI)
	recurring.NewRunHandler(r.Engine).Register(humaAPI)
	transaction.NewCreateTransactionHandler(r.Service.Transaction).Register(humaAPI)
	transaction.NewListTransactionsHandler(r.Service.Transaction).Register(humaAPI)

	statusHandler := status.NewHandler()
	mux.HandleFunc("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))

	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           mux,
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	r.Logger.Info("HttpServer.Serve.listening")
	err := server.ListenAndServe()
	if err != nil {
		r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
	}
	r.Logger.Info("HttpServer.Serve.shutting down")
}
