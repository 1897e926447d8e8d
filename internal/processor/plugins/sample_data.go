package plugins

import (
	"context"
	"errors"
	"fmt"

	"content-loader/internal/processor"
	"content-loader/internal/record"
	"content-loader/internal/sampledata"
)

var sampleDataDefinition = processor.Definition{
	ID:          SampleDataID,
	Label:       "Sample data",
	Description: "Appends a value from a dataset or a generated sample.",
	Context: []processor.ParamSpec{
		{Name: "dataset", Description: "Dataset location: {path, file}."},
		{Name: "lookup", Description: "Dataset key to take the next value from."},
		{Name: "data_type", Description: "Generated sample type."},
		{Name: "params", Description: "Generator parameters."},
	},
	SupportsImport: true,
}

type sampleDataParams struct {
	Dataset *struct {
		Path string `param:"path"`
		File string `param:"file"`
	} `param:"dataset"`
	Lookup   string         `param:"lookup"`
	DataType string         `param:"data_type"`
	Params   map[string]any `param:"params"`
}

// SampleData appends one sample value to the node.
type SampleData struct {
	processor.Base

	loader *sampledata.Loader
}

func (p *SampleData) Preprocess(ctx context.Context, node *record.Node, c processor.Context) (*record.Node, error) {
	if p.loader == nil {
		return nil, errors.New("sample_data: no sample data loader")
	}

	var params sampleDataParams
	if err := c.Decode(&params); err != nil {
		return nil, fmt.Errorf("sample_data: %w", err)
	}

	var value any

	switch {
	case params.Dataset != nil:
		ds, err := p.loader.LoadDataSet(sampledata.DataSetPath(params.Dataset.Path, params.Dataset.File))
		if err != nil {
			return nil, err
		}

		v, ok := ds.Get(params.Lookup)
		if !ok {
			return nil, fmt.Errorf("sample_data: dataset %s has no values for %q", params.Dataset.File, params.Lookup)
		}

		value = v
	case params.DataType != "":
		v, err := p.loader.LoadSample(ctx, params.DataType, params.Params)
		if err != nil {
			return nil, err
		}

		value = v
	default:
		return nil, errors.New("sample_data: either dataset or data_type is required")
	}

	return processor.AppendItems(node, record.FromValue(value)), nil
}
