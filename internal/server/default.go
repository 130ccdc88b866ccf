package server

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/arbportal/feedback-portal/pkg/application"
	"github.com/arbportal/feedback-portal/pkg/configuration"
	"github.com/arbportal/feedback-portal/pkg/constants"
	"github.com/arbportal/feedback-portal/pkg/middleware"
	"github.com/arbportal/feedback-portal/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	app.RegisterMiddleware(
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),
	)

	return server.NewHTTPServer(
		app,
		http.NotFoundHandler(),
		methodNotAllowedHandler(),
	), nil
}

func methodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})
}
