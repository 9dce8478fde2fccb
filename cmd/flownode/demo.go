package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sliink/flownode/internal/config"
	"github.com/sliink/flownode/internal/host"
	"github.com/sliink/flownode/internal/model"
	"github.com/sliink/flownode/internal/node"
)

// demoNode bundles the demo node with the sink and settings the script needs
type demoNode struct {
	node         *node.PluginNode
	sink         *host.CaptureSink
	mode         model.Mode
	inputSchema  model.Schema
	inputAnchor  string
	outputAnchor string
	count        int
}

// buildDemoNode constructs a pass-through node from the tool configuration.
// The transformation copies input records to the output anchor, uppercasing
// string values when the configuration asks for it; source mode generates
// records instead.
func buildDemoNode(rawConfig []byte, anchor string, dryRun bool) (*demoNode, error) {
	cfg, err := config.Parse(rawConfig)
	if err != nil {
		return nil, fmt.Errorf("parsing tool configuration: %w", err)
	}

	mode := model.Mode(cfg.GetString("mode", string(model.BatchMode)))
	outputAnchor := cfg.GetString("output_anchor", "Output")

	inputSchema := model.NewSchema(model.Field{Name: "value", Type: model.StringField})
	if schemaTree, ok := cfg.Child("input_schema"); ok {
		if err := schemaTree.Decode(&inputSchema); err != nil {
			return nil, fmt.Errorf("decoding input schema: %w", err)
		}
	}

	demo := &demoNode{
		mode:         mode,
		inputSchema:  inputSchema,
		inputAnchor:  anchor,
		outputAnchor: outputAnchor,
		count:        cfg.GetInt("count", 3),
		sink:         host.NewCaptureSink(),
	}

	var requiredInputs []string
	if mode != model.SourceMode {
		requiredInputs = []string{anchor}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	n, err := node.New(node.Options{
		ToolName:       cfg.GetString("tool", "demo"),
		Mode:           mode,
		RequiredInputs: requiredInputs,
		OutputAnchors:  []string{outputAnchor},
		UpdateOnly:     dryRun,
		Logger:         logger,
		Sink:           demo.sink,
		Hooks:          demo.hooks(),
	})
	if err != nil {
		return nil, err
	}
	demo.node = n

	return demo, nil
}

func (d *demoNode) hooks() node.Hooks {
	return node.Hooks{
		Init: func(cfg *config.Tree, state *node.UserState, logger *slog.Logger) bool {
			state.Set("uppercase", cfg.GetBool("uppercase", false))
			return true
		},
		BuildMetadata: func(in *node.InputManager, out *node.OutputManager, state *node.UserState, logger *slog.Logger) {
			anchor, ok := out.Anchor(d.outputAnchor)
			if !ok {
				logger.Error("output anchor missing", "anchor", d.outputAnchor)
				return
			}
			if d.mode == model.SourceMode {
				anchor.SetSchema(model.NewSchema(
					model.Field{Name: "id", Type: model.Int64Field},
					model.Field{Name: "value", Type: model.StringField},
				))
				return
			}
			// Pass-through: the output carries the input columns
			if input, ok := in.Anchor(d.inputAnchor); ok {
				anchor.SetSchema(input.Schema())
			}
		},
		ProcessData: func(in *node.InputManager, out *node.OutputManager, state *node.UserState, logger *slog.Logger) {
			anchor, ok := out.Anchor(d.outputAnchor)
			if !ok {
				return
			}

			if d.mode == model.SourceMode {
				for i := 0; i < d.count; i++ {
					anchor.Write(model.NewRecord(int64(i), fmt.Sprintf("record-%d", i)))
				}
				return
			}

			uppercase, _ := state.Get("uppercase")
			input, ok := in.Anchor(d.inputAnchor)
			if !ok {
				return
			}
			for _, rec := range input.Records() {
				anchor.Write(transformRecord(rec, uppercase == true))
			}
		},
	}
}

// transformRecord copies a record, uppercasing string values when asked
func transformRecord(rec model.Record, uppercase bool) model.Record {
	out := rec.Clone()
	if !uppercase {
		return out
	}
	for i, v := range out.Values {
		if s, ok := v.(string); ok {
			out.Values[i] = strings.ToUpper(s)
		}
	}
	return out
}

// buildScript turns the configuration and record feed into one scripted run
func buildScript(demo *demoNode, rawConfig []byte, recordsPath, anchor string) (*host.Script, error) {
	script := host.NewScript().
		Init(rawConfig).
		AddOutgoing(demo.outputAnchor)

	if demo.mode == model.SourceMode {
		return script.PushAll(0).Close(false), nil
	}

	script.AddIncoming("stream", anchor, "").
		InterfaceInit(anchor, demo.inputSchema)

	records, err := readRecords(recordsPath)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		script.Push(anchor, rec)
		script.Progress(anchor, float64(i+1)/float64(len(records)))
	}

	return script.CloseInterface(anchor).Close(false), nil
}

// readRecords reads a JSONL feed where each line is an array of values
func readRecords(path string) ([]model.Record, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening record feed: %w", err)
	}
	defer f.Close()

	var records []model.Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var values []any
		if err := json.Unmarshal([]byte(line), &values); err != nil {
			return nil, fmt.Errorf("parsing record feed line %q: %w", line, err)
		}
		records = append(records, model.NewRecord(values...))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading record feed: %w", err)
	}

	return records, nil
}

// printOutputs writes everything the node pushed downstream as JSON
func printOutputs(sink *host.CaptureSink) {
	data, err := json.MarshalIndent(sink.Captured(), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encoding outputs: %s\n", err)
		return
	}
	fmt.Println(string(data))
}
