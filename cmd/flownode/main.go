package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sliink/flownode/internal/api"
	"github.com/sliink/flownode/internal/host"
	"github.com/sliink/flownode/internal/model"
)

var (
	configFile  string
	recordsFile string
	nodeName    string
	inputAnchor string
	updateOnly  bool
	quiet       bool
	apiEnabled  bool
	apiPort     int
	apiHost     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flownode",
		Short: "Flownode - drive a dataflow node through a simulated host run",
		RunE:  runFlownode,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to the YAML tool configuration")
	rootCmd.PersistentFlags().StringVar(&recordsFile, "records", "", "Path to a JSONL record feed for the input anchor")
	rootCmd.PersistentFlags().StringVar(&nodeName, "name", "demo", "Name to register the node under")
	rootCmd.PersistentFlags().StringVar(&inputAnchor, "input-anchor", "Input", "Input anchor to feed records into")
	rootCmd.PersistentFlags().BoolVar(&updateOnly, "update-only", false, "Dry run: negotiate schema only, push no data")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress per-event output")

	rootCmd.PersistentFlags().BoolVar(&apiEnabled, "api", false, "Serve the inspection API after the run")
	rootCmd.PersistentFlags().IntVar(&apiPort, "api-port", 8080, "Inspection API port")
	rootCmd.PersistentFlags().StringVar(&apiHost, "api-host", "localhost", "Inspection API host")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runFlownode(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		return fmt.Errorf("--config is required")
	}

	rawConfig, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("reading tool configuration: %w", err)
	}

	demo, err := buildDemoNode(rawConfig, inputAnchor, updateOnly)
	if err != nil {
		return err
	}

	bus := host.NewEventBus()
	if !quiet {
		subscribeEventPrinter(bus)
	}

	driver := host.NewDriver(nodeName, demo.node, demo.sink, bus)
	registry := host.NewDriverRegistry()
	registry.Register(driver)

	script, err := buildScript(demo, rawConfig, recordsFile, inputAnchor)
	if err != nil {
		return err
	}

	if err := driver.Run(script); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	printOutputs(demo.sink)

	if apiEnabled {
		return serveAPI(registry)
	}

	return nil
}

func subscribeEventPrinter(bus *host.EventBus) {
	printer := func(event host.Event) {
		fmt.Fprintf(os.Stderr, "[%s] %s node=%s\n",
			event.Timestamp.Format(time.RFC3339), event.Type, event.Node)
	}
	for _, eventType := range []model.EventType{
		model.EventNodeInit,
		model.EventConnectionAdded,
		model.EventRecordPushed,
		model.EventMetadataNegotiated,
		model.EventInterfaceClosed,
		model.EventNodeClosed,
		model.EventError,
	} {
		bus.Subscribe(eventType, "printer", printer)
	}
}

func serveAPI(registry *host.DriverRegistry) error {
	apiServer := api.NewAPI(registry, apiPort, apiHost)

	go func() {
		fmt.Fprintf(os.Stderr, "Serving inspection API at %s:%d\n", apiHost, apiPort)
		if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "API server error: %s\n", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return apiServer.Stop(ctx)
}
