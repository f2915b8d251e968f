package main

import (
	"os"
	"strconv"

	"visit/config"
	"visit/helper"
	"visit/shared/logger"

	"github.com/rs/zerolog/log"
)

const usage = "usage: migrate up|step-up|down|drop|version|force <version>"

func main() {
	logger.InitLogger()

	if len(os.Args) < 2 {
		log.Fatal().Msg(usage)
	}

	cfg := config.Get()

	if os.Args[1] == "force" {
		if len(os.Args) < 3 {
			log.Fatal().Msg(usage)
		}

		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatal().Err(err).Msg("Version must be a number")
		}

		if err := helper.Force(cfg, version); err != nil {
			log.Fatal().Err(err).Msg("Failed to force schema version")
		}

		return
	}

	if err := helper.Run(cfg, helper.Action(os.Args[1])); err != nil {
		log.Fatal().Err(err).Msg(usage)
	}
}
