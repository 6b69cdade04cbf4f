package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/avstrong/resort/internal/app"
	"github.com/avstrong/resort/internal/config"
	"github.com/avstrong/resort/internal/logger"
)

func main() {
	path := flag.String("config", os.Getenv("RESORT_CONFIG"), "path to a yaml config file")
	flag.Parse()

	conf, err := config.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	//nolint:exhaustruct
	l := logger.New(logger.Conf{
		Level:   conf.Log.Level,
		Pretty:  conf.Log.Pretty,
		Service: conf.Service,
	})

	var exitCode int

	if err := app.Run(l, conf); err != nil {
		l.LogErrorf("Failed to run app: %v", err.Error())

		exitCode = 1
	}

	os.Exit(exitCode)
}
