package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"stocksentiment/internal/app"
	"stocksentiment/internal/infrastructure"
	"stocksentiment/internal/operations"
	"stocksentiment/pkg/contracts"
)

var defaultSteps = strings.Join([]string{
	operations.StepIDPrices,
	operations.StepIDTweets,
	operations.StepIDAggregate,
	operations.StepIDVerify,
}, ",")

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file (defaults to config.yaml lookup)")
	steps := flag.String("steps", defaultSteps, "comma separated steps to run: prices, tweets, aggregate, verify")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.NewRuntime(app.Options{ConfigPath: *configPath})
	if err != nil {
		slog.Error("Failed to initialize", slog.String("error", err.Error()))
		os.Exit(1)
	}

	_, err = rt.Execute(ctx, operations.OperationRequest{Steps: app.SplitList(*steps)})
	if err != nil {
		infrastructure.WithError(rt.Logger, err).Error("Acquisition failed")
	}
	if closeErr := rt.Close(context.Background()); closeErr != nil {
		slog.Warn("Failed to release resources", slog.String("error", closeErr.Error()))
	}
	if err != nil {
		os.Exit(1)
	}
}
