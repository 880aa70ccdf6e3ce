// Command parity is a CLI tool for triggering and inspecting release pipelines.
//
// Usage:
//
//	parity trigger --algorithm A --current-version V
//	parity status  --workflow-id WID
//	parity report  --workflow-id WID
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.temporal.io/sdk/client"

	"github.com/algoparity/parity-go/internal/temporal/querier"
	"github.com/algoparity/parity-go/internal/temporal/workflows"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "trigger":
		cmdTrigger(os.Args[2:])
	case "status":
		cmdStatus(os.Args[2:])
	case "report":
		cmdReport(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: parity <trigger|status|report> [flags]")
	os.Exit(1)
}

func dial() *querier.TemporalQuerier {
	c, err := client.Dial(client.Options{})
	if err != nil {
		log.Fatalf("unable to create Temporal client: %v", err)
	}
	return querier.New(c)
}

func cmdTrigger(args []string) {
	fs := flag.NewFlagSet("trigger", flag.ExitOnError)
	algorithm := fs.String("algorithm", "", "algorithm name (required)")
	current := fs.String("current-version", "", "last released version (required)")
	_ = fs.Parse(args)

	if *algorithm == "" || *current == "" {
		fs.Usage()
		os.Exit(1)
	}

	q := dial()
	receipt, err := q.StartPipeline(context.Background(), workflows.WorkflowInput{
		Algorithm:      *algorithm,
		CurrentVersion: *current,
	})
	if err != nil {
		log.Fatalf("failed to start pipeline: %v", err)
	}
	fmt.Printf("started pipeline %s (run=%s)\n", receipt.WorkflowID, receipt.RunID)
}

func cmdStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	wfID := fs.String("workflow-id", "", "workflow ID (required)")
	_ = fs.Parse(args)

	if *wfID == "" {
		fs.Usage()
		os.Exit(1)
	}

	q := dial()
	desc, err := q.DescribePipeline(context.Background(), *wfID)
	if err != nil {
		log.Fatalf("failed to describe pipeline: %v", err)
	}
	printJSON(desc)
}

func cmdReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	wfID := fs.String("workflow-id", "", "workflow ID (required)")
	_ = fs.Parse(args)

	if *wfID == "" {
		fs.Usage()
		os.Exit(1)
	}

	q := dial()
	result, err := q.GetPipelineState(context.Background(), *wfID)
	if err != nil {
		log.Fatalf("failed to fetch pipeline state: %v", err)
	}
	if result.State.Report == nil {
		log.Fatalf("pipeline %s has no equivalence report yet", *wfID)
	}
	printJSON(result.State.Report)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal output: %v", err)
	}
	fmt.Println(string(data))
}
