package main

import (
	"strings"

	"github.com/askora/askora/config"
	"github.com/askora/askora/models"
	"github.com/askora/askora/routes"
	"github.com/askora/askora/store"
	"github.com/askora/askora/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	var s store.Store
	if strings.EqualFold(cfg.DBDriver, "memory") {
		utils.Sugar.Warn("using in-memory store; data will not survive a restart")
		s = store.NewMemory()
	} else {
		db := config.InitDatabase(
			&models.User{},
			&models.Question{},
			&models.QuestionTag{},
			&models.QuestionEntity{},
			&models.Answer{},
			&models.Comment{},
			&models.Vote{},
			&models.Favorite{},
		)
		s = store.NewGorm(db)
	}

	utils.InitRedis(cfg)

	r := routes.SetupRouter(s)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
