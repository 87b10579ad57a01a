package main

import (
	log "github.com/sirupsen/logrus"

	_ "todolist/docs"
	"todolist/internal/config"
	"todolist/internal/logger"
	"todolist/internal/server"
)

// @title           Todolist API
// @version         1.0
// @description     Local API over the todo list, reminders and schedule.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token from the preference file.

// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	l := logger.New(cfg)

	s, err := server.Init(cfg, l)
	if err != nil {
		l.WithError(err).Fatal("server initialization failed")
	}

	s.Run()
}
