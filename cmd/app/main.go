package main

import (
	"todolist/config"
	"todolist/di"
	"todolist/shared/logger"
)

// @title						Todolist API
// @version					1.0
// @description				CRUD service for todo items.
// @BasePath					/
// @securityDefinitions.apikey	ApiKeyAuth
// @in							header
// @name						X-API-Key
func main() {
	cfg := config.Get()

	logger.InitLogger(cfg)

	logger.SetLogLevel(cfg)

	http := di.InitializeService()
	http.Serve()
}
