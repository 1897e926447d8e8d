// Package plugins provides the processors bundled with the content loader.
package plugins

import (
	"io"
	"io/fs"
	"log"

	"content-loader/internal/processor"
	"content-loader/internal/sampledata"
	"content-loader/internal/storage"
)

// Plugin ids.
const (
	DebugID           = "debug"
	EntityReferenceID = "entity_reference"
	SampleDataID      = "sample_data"
	TemplateID        = "template"
)

// Deps are the collaborators the bundled processors need.
type Deps struct {
	Repo       storage.Repository
	FS         fs.FS
	SampleData *sampledata.Loader
	Logger     *log.Logger
}

// Register adds every bundled processor to reg.
func Register(reg *processor.Registry, deps Deps) error {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard, "", 0)
	}

	if deps.SampleData == nil && deps.FS != nil {
		deps.SampleData = sampledata.NewLoader(deps.FS, deps.Repo)
	}

	plugins := []struct {
		def     processor.Definition
		factory processor.Factory
	}{
		{debugDefinition, func() (any, error) { return &Debug{logger: deps.Logger}, nil }},
		{entityReferenceDefinition, func() (any, error) { return &EntityReference{repo: deps.Repo}, nil }},
		{sampleDataDefinition, func() (any, error) { return &SampleData{loader: deps.SampleData}, nil }},
		{templateDefinition, func() (any, error) { return &Template{fsys: deps.FS}, nil }},
	}

	for _, p := range plugins {
		if err := reg.Register(p.def, p.factory); err != nil {
			return err
		}
	}

	return nil
}
