package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"stocksentiment/internal/app"
	"stocksentiment/pkg/contracts"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file (defaults to config.yaml lookup)")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	application, err := app.NewApplication(app.Options{ConfigPath: *configPath})
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
