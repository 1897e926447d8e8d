package plugins

import (
	"context"
	"log"

	"github.com/davecgh/go-spew/spew"

	"content-loader/internal/processor"
	"content-loader/internal/record"
)

var debugDefinition = processor.Definition{
	ID:             DebugID,
	Label:          "Debug",
	Description:    "Dumps the import data and the imported result to the log.",
	SupportsImport: true,
}

var dumper = spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}

// Debug logs the node before the build and the node with the result after it.
type Debug struct {
	logger *log.Logger
}

func (d *Debug) Preprocess(_ context.Context, node *record.Node, c processor.Context) (*record.Node, error) {
	d.logger.Printf("debug preprocess %s:\n%s", c.String(processor.KeyEntityType), dumper.Sdump(node.Interface()))

	return node, nil
}

func (d *Debug) Postprocess(_ context.Context, node *record.Node, result any, c processor.Context) error {
	d.logger.Printf("debug postprocess %s:\n%s", c.String(processor.KeyEntityType),
		dumper.Sdump(map[string]any{"import data": node.Interface(), "imported content": result}))

	return nil
}
