package routes

import (
	"net/http"

	"CapIot.readings/internal/controller"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all application routes on router.
// Fixed /data paths are registered before /data/{id} so they are not captured as ids.
func RegisterRoutes(router *mux.Router, data *controller.DataController, system *controller.SystemController, metrics http.Handler) {
	router.HandleFunc("/", system.Root).Methods(http.MethodGet)
	router.HandleFunc("/health", system.Health).Methods(http.MethodGet)
	router.HandleFunc("/routes", system.Routes).Methods(http.MethodGet)
	router.Handle("/metrics", metrics).Methods(http.MethodGet)

	router.HandleFunc("/data", data.SaveData).Methods(http.MethodPost)
	router.HandleFunc("/data", data.ListData).Methods(http.MethodGet)
	router.HandleFunc("/data/latest", data.LatestData).Methods(http.MethodGet)
	router.HandleFunc("/data/range", data.RangeData).Methods(http.MethodGet)
	router.HandleFunc("/data/{id}", data.GetData).Methods(http.MethodGet)
	router.HandleFunc("/data/{id}", data.DeleteData).Methods(http.MethodDelete)

	router.NotFoundHandler = http.HandlerFunc(controller.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(controller.MethodNotAllowed)
}
