// Package operations runs the pipeline as a sequence of registered steps.
//
// Core Components:
//
// Step: a single unit of work (prices, tweets, aggregate, verify, wrangle).
// Dependencies only order steps that are selected together; selecting the
// verify step alone checks whatever the directories currently hold.
//
// Registry: keeps steps in registration order and resolves a selection into
// dependency order.
//
// Manager: executes a selection one step after another, stops at the first
// failure and marks the remaining steps skipped. Only one operation runs at
// a time; a second request gets ErrOperationBusy.
//
// Example usage:
//
//	registry, err := operations.NewPipelineRegistry(operations.Dependencies{
//		Config: cfg,
//		Paths:  paths,
//		Logger: logger,
//	})
//	manager := operations.NewManager(registry, nil, nil, logger)
//	resp, err := manager.Execute(ctx, operations.OperationRequest{
//		Steps: []string{operations.StepIDAggregate, operations.StepIDVerify},
//	})
package operations
