package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/hanpama/newsgraph/internal/eventbus"
	"github.com/hanpama/newsgraph/internal/events"
	"github.com/hanpama/newsgraph/internal/graph"
	"github.com/hanpama/newsgraph/internal/language"
	"github.com/hanpama/newsgraph/internal/otel"
	"github.com/hanpama/newsgraph/internal/reqid"
	"github.com/hanpama/newsgraph/internal/store"
)

const rootUsage = `newsgraph — batched GraphQL engine over the news feed dataset

USAGE:
  newsgraph <command> [flags]

COMMANDS:
  query            Execute a GraphQL operation against the seeded store
  help             Show help for any command
`

const queryUsage = `query FLAGS:
  -query <string>          GraphQL document to execute (required)
  -operation <name>        Operation name, when the document has several
  -vars <json>             Variables as a JSON object (default: {})
  -pretty                  Pretty-print the JSON response
  -timeout <duration>      Execution timeout, e.g. 10s (default: 10s)
  -otel.endpoint <addr>    OTLP collector endpoint
  -otel.service <name>     OpenTelemetry service name (default: newsgraph)
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	global := flag.NewFlagSet("newsgraph", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "query":
		return cmdQuery(cmdArgs, out)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "query":
		fmt.Print(queryUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdQuery(args []string, out io.Writer) error {
	query := ""
	operation := ""
	varsJSON := "{}"
	pretty := false
	timeout := 10 * time.Second
	otelEndpoint := ""
	otelService := "newsgraph"

	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&query, "query", query, "GraphQL document to execute")
	fs.StringVar(&operation, "operation", operation, "Operation name")
	fs.StringVar(&varsJSON, "vars", varsJSON, "Variables as a JSON object")
	fs.BoolVar(&pretty, "pretty", pretty, "Pretty-print the JSON response")
	fs.DurationVar(&timeout, "timeout", timeout, "Execution timeout")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, queryUsage)
		return err
	}
	if query == "" {
		fmt.Fprint(os.Stderr, queryUsage)
		return fmt.Errorf("-query is required")
	}

	var variables map[string]any
	if err := json.Unmarshal([]byte(varsJSON), &variables); err != nil {
		return fmt.Errorf("parse -vars: %w", err)
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	doc, err := language.ParseQuery(query)
	if err != nil {
		return fmt.Errorf("parse query: %w", err)
	}

	exec := graph.New(store.NewSeeded())

	ctx, _ := reqid.NewContext(context.Background())
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	opType := operationType(doc, operation)
	eventbus.Publish(ctx, events.GraphQLStart{
		Query: query, OperationName: operation, OperationType: opType,
	})
	start := time.Now()
	result := exec.ExecuteRequest(ctx, doc, operation, variables)
	var errs []error
	for _, e := range result.Errors {
		errs = append(errs, e)
	}
	eventbus.Publish(ctx, events.GraphQLFinish{
		Query: query, OperationName: operation, OperationType: opType,
		Errors: errs, Duration: time.Since(start),
	})

	enc := json.NewEncoder(out)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}

func operationType(doc *language.QueryDocument, name string) string {
	if name == "" && len(doc.Operations) == 1 {
		return string(doc.Operations[0].Operation)
	}
	if op := doc.Operations.ForName(name); op != nil {
		return string(op.Operation)
	}
	return ""
}
