package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"stocksentiment/internal/app"
	"stocksentiment/internal/infrastructure"
	"stocksentiment/internal/operations"
	"stocksentiment/pkg/contracts"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file (defaults to config.yaml lookup)")
	corpus := flag.String("corpus", "", "comma separated corpus ids to wrangle (default: all)")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	ids, err := app.ParseCorpusIDs(*corpus)
	if err != nil {
		slog.Error("Invalid -corpus flag", slog.String("error", err.Error()))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.NewRuntime(app.Options{ConfigPath: *configPath})
	if err != nil {
		slog.Error("Failed to initialize", slog.String("error", err.Error()))
		os.Exit(1)
	}

	_, err = rt.Execute(ctx, operations.OperationRequest{
		Steps:     []string{operations.StepIDWrangle},
		CorpusIDs: ids,
	})
	if err != nil {
		infrastructure.WithError(rt.Logger, err).Error("Wrangling failed")
	}
	if closeErr := rt.Close(context.Background()); closeErr != nil {
		slog.Warn("Failed to release resources", slog.String("error", closeErr.Error()))
	}
	if err != nil {
		os.Exit(1)
	}
}
