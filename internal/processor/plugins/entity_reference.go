package plugins

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"content-loader/internal/common"
	"content-loader/internal/processor"
	"content-loader/internal/record"
	"content-loader/internal/storage"
)

var entityReferenceDefinition = processor.Definition{
	ID:          EntityReferenceID,
	Label:       "Entity reference",
	Description: "Appends references to existing objects matching the given conditions.",
	Context: []processor.ParamSpec{
		{Name: "entity_type", Required: true, Description: "Type of the referenced objects."},
		{Name: "bundle", Description: "Subtype condition, stored under the type property."},
		{Name: "conditions", Description: "Field or property equality conditions."},
		{Name: "limit", Description: "Maximum number of references; 0 for all."},
	},
	SupportsImport: true,
}

type entityReferenceParams struct {
	EntityType string         `param:"entity_type"`
	Bundle     string         `param:"bundle"`
	Type       string         `param:"type"`
	Conditions map[string]any `param:"conditions"`
	Limit      int            `param:"limit"`
}

// EntityReference resolves a field value by query instead of construction.
// Each match is appended to the node as a storage.Reference.
type EntityReference struct {
	processor.Base

	repo storage.Repository
}

func (p *EntityReference) Preprocess(ctx context.Context, node *record.Node, c processor.Context) (*record.Node, error) {
	if p.repo == nil {
		return nil, errors.New("entity_reference: no repository")
	}

	var params entityReferenceParams
	if err := c.Decode(&params); err != nil {
		return nil, fmt.Errorf("entity_reference: %w", err)
	}

	filters := maps.Clone(params.Conditions)
	if filters == nil {
		filters = map[string]any{}
	}

	if bundle := cmp.Or(params.Bundle, params.Type); bundle != "" {
		filters["type"] = bundle
	}

	keys := slices.Sorted(maps.Keys(filters))
	conds := make([]storage.Condition, 0, len(keys))

	for _, k := range keys {
		conds = append(conds, storage.Condition{Field: k, Value: filters[k]})
	}

	found, err := p.repo.Query(ctx, params.EntityType, conds)
	if err != nil {
		return nil, err
	}

	if len(found) == 0 {
		return nil, &processor.MissingReferenceError{EntityType: params.EntityType, Conditions: filters}
	}

	if params.Limit > 0 {
		found = common.Limit(found, params.Limit)
	}

	items := make([]*record.Node, 0, len(found))
	for _, obj := range found {
		items = append(items, record.Scalar(storage.RefTo(obj)))
	}

	return processor.AppendItems(node, items...), nil
}
