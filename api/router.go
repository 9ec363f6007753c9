package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	appMiddleware "github.com/prasetyowira/qrlabel/api/middleware"
	"github.com/prasetyowira/qrlabel/constant"
	appLogger "github.com/prasetyowira/qrlabel/infrastructure/logger"
)

// LabelHandler is the set of endpoints the router mounts
type LabelHandler interface {
	CreateLabels(w http.ResponseWriter, r *http.Request)
	UploadLabels(w http.ResponseWriter, r *http.Request)
	DecodeUpload(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)
	QRCode(w http.ResponseWriter, r *http.Request)
}

// Router represents the application router
type Router struct {
	handler  LabelHandler
	router   *chi.Mux
	username string
	password string
}

// NewRouter creates a new router. An empty username leaves the API open.
func NewRouter(handler LabelHandler, username, password string) *Router {
	r := chi.NewRouter()

	// Middleware setup
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(appMiddleware.RequestLogger())

	return &Router{
		handler:  handler,
		router:   r,
		username: username,
		password: password,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() {
	appLogger.Info(constant.MsgSettingUpRoutes, appLogger.LoggerInfo{
		ContextFunction: constant.CtxRouter,
	})

	r.router.Group(func(api chi.Router) {
		if r.username != "" {
			api.Use(middleware.BasicAuth(constant.RespAuthRealm, map[string]string{
				r.username: r.password,
			}))
		}

		api.Post(constant.RouteCreateLabels, r.handler.CreateLabels)
		api.Post(constant.RouteUploadLabels, r.handler.UploadLabels)
		api.Post(constant.RouteDecode, r.handler.DecodeUpload)
		api.Get(constant.RouteRuns, r.handler.ListRuns)
		api.Get(constant.RouteQRCode, r.handler.QRCode)
	})

	// Healthcheck
	r.router.Get(constant.RouteHealthcheck, func(w http.ResponseWriter, r *http.Request) {
		appLogger.CtxDebug(r.Context(), constant.MsgHealthcheckRequest, appLogger.LoggerInfo{
			ContextFunction: constant.CtxRouter,
		})

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(constant.MsgHealthy))
	})
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
