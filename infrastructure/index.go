package infrastructure

import "ekyc.io/infrastructure/env"

type serverInterface interface {
	Start() error
}

// StartServer blocks until the HTTP server stops. The task queue runs in the
// same process and is started with the other services.
func StartServer(cfg *env.Config) error {
	var server serverInterface = &ginServer{cfg: cfg}
	return server.Start()
}
