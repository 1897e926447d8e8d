package plugins

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"content-loader/internal/processor"
	"content-loader/internal/record"
)

var templateDefinition = processor.Definition{
	ID:          TemplateID,
	Label:       "Template",
	Description: "Appends copies of a record template.",
	Context: []processor.ParamSpec{
		{Name: "template", Required: true, Description: "Template name, read from <dir>/<template>.template.yml."},
		{Name: "count", Description: "Number of copies, default 1."},
		{Name: "dir", Description: "Template directory in the content root, default templates."},
	},
	SupportsImport: true,
}

const defaultTemplateDir = "templates"

type templateParams struct {
	Template string `param:"template"`
	Count    *int   `param:"count"`
	Dir      string `param:"dir"`
}

// Template appends count deep copies of a template document to the node.
type Template struct {
	processor.Base

	fsys fs.FS
}

func (p *Template) Preprocess(_ context.Context, node *record.Node, c processor.Context) (*record.Node, error) {
	if p.fsys == nil {
		return nil, errors.New("template: no content file system")
	}

	var params templateParams
	if err := c.Decode(&params); err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}

	count := 1
	if params.Count != nil {
		count = *params.Count
	}

	if count < 0 {
		return nil, fmt.Errorf("template: negative count %d", count)
	}

	dir := params.Dir
	if dir == "" {
		dir = defaultTemplateDir
	}

	name := path.Join(dir, params.Template+".template.yml")

	data, err := fs.ReadFile(p.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}

	tmpl, err := record.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}

	items := make([]*record.Node, 0, count)
	for range count {
		items = append(items, tmpl.Clone())
	}

	return processor.AppendItems(node, items...), nil
}
