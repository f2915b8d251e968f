package handler

import (
	"net/http"
	"os"
	"sync"

	"visit/di"
	"visit/shared/logger"
)

var (
	app  *di.App
	once sync.Once
)

// Handler serves the API as a serverless function. The dependency graph is built on the first
// invocation and reused while the instance stays warm.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		logger.InitLogger()

		app = di.InitializeService()

		logger.Configure(app.Config, os.Stdout)
	})

	app.HTTP.ServeHTTP(w, r)
}
