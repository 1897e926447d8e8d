// Command content-loader imports YAML content documents into a content
// repository described by a schema.
package main

import (
	"context"
	"flag"
	"os"

	"content-loader/internal/cmd/loader"
	"content-loader/internal/config"
)

func main() {
	cfg, err := loader.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	if err := loader.Run(context.Background(), cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
