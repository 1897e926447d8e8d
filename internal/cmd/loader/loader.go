// Package loader implements the content-loader command.
package loader

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"content-loader/internal/analyze"
	"content-loader/internal/config"
	"content-loader/internal/content"
	"content-loader/internal/diagnostic"
	"content-loader/internal/processor"
	"content-loader/internal/processor/plugins"
	"content-loader/internal/sampledata"
	"content-loader/internal/schema"
	"content-loader/internal/storage"
	"content-loader/internal/storage/memory"
	"content-loader/internal/storage/sqlite"
)

// Config holds the command settings and the documents to import.
type Config struct {
	config.Config

	// Files are document names relative to ContentRoot.
	Files []string
}

// ParseConfig reads defaults from the environment, then parses command-line
// flags over them.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg.Config); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.SchemaPath, "schema", cfg.SchemaPath, "YAML schema file")
	fs.StringVar(&cfg.TypesPattern, "types", cfg.TypesPattern, "Go package pattern with annotated content types (overrides -schema)")
	fs.StringVar(&cfg.ContentRoot, "root", cfg.ContentRoot, "content root directory")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (empty keeps objects in memory)")
	fs.StringVar(&cfg.FilesDir, "files", cfg.FilesDir, "directory receiving generated sample files")
	fs.BoolVar(&cfg.ExistenceCheck, "existence-check", cfg.ExistenceCheck, "update matching objects instead of creating new ones")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "build objects without saving them")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log field level failures and directive output")
	fs.StringVar(&cfg.TypeKey, "type-key", cfg.TypeKey, "record key naming the target type")
	fs.StringVar(&cfg.DirectivePolicy, "policy", cfg.DirectivePolicy, "directive with missing context: abort or skip")
	fs.StringVar(&cfg.MatchPolicy, "match", cfg.MatchPolicy, "existence check with several matches: first, latest or unique")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Files = fs.Args()

	if len(cfg.Files) == 0 {
		return Config{}, errors.New("at least one content file is required")
	}

	if strings.TrimSpace(cfg.SchemaPath) == "" && strings.TrimSpace(cfg.TypesPattern) == "" {
		return Config{}, errors.New("schema or types is required")
	}

	if _, err := processor.ParsePolicy(cfg.DirectivePolicy); err != nil {
		return Config{}, err
	}

	if _, err := content.ParseMatchPolicy(cfg.MatchPolicy); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Run imports every configured document and reports the built objects and
// diagnostics to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if out == nil {
		out = io.Discard
	}

	if len(cfg.Files) == 0 {
		return errors.New("at least one content file is required")
	}

	policy, err := processor.ParsePolicy(cfg.DirectivePolicy)
	if err != nil {
		return err
	}

	match, err := content.ParseMatchPolicy(cfg.MatchPolicy)
	if err != nil {
		return err
	}

	reg, err := loadSchema(cfg.Config, out)
	if err != nil {
		return err
	}

	repo, closeRepo, err := openRepository(cfg.DBPath, reg)
	if err != nil {
		return err
	}
	defer closeRepo()

	logger := log.New(io.Discard, "", 0)
	if cfg.Verbose {
		logger = log.New(out, "content-loader: ", 0)
	}

	fsys := os.DirFS(cfg.ContentRoot)

	plugs := processor.NewRegistry()
	if err := plugins.Register(plugs, plugins.Deps{
		Repo:       repo,
		FS:         fsys,
		SampleData: sampledata.NewLoader(fsys, repo, sampledata.WithFilesDir(cfg.FilesDir)),
		Logger:     logger,
	}); err != nil {
		return fmt.Errorf("register plugins: %w", err)
	}

	l := content.New(repo, plugs, fsys,
		content.WithExistenceCheck(cfg.ExistenceCheck),
		content.WithTypeKey(cfg.TypeKey),
		content.WithDirectivePolicy(policy),
		content.WithMatchPolicy(match),
		content.WithLogger(logger),
	)

	var (
		total int
		diags diagnostic.Diagnostics
	)

	for _, name := range cfg.Files {
		res, err := l.LoadContent(ctx, name, !cfg.DryRun)
		if err != nil {
			return fmt.Errorf("import %s: %w", name, err)
		}

		total += len(res.Objects)
		diags.Merge(res.Diagnostics)

		if err := report(out, name, res); err != nil {
			return err
		}
	}

	verb := "imported"
	if cfg.DryRun {
		verb = "validated"
	}

	_, err = fmt.Fprintf(out, "%s %d object(s) from %d document(s), %d error(s), %d warning(s)\n",
		verb, total, len(cfg.Files), len(diags.Errors), len(diags.Warnings))

	return err
}

func loadSchema(cfg config.Config, out io.Writer) (*schema.Registry, error) {
	var (
		reg   *schema.Registry
		diags *diagnostic.Diagnostics
		err   error
	)

	if cfg.TypesPattern != "" {
		types, lerr := analyze.NewAnalyzer().LoadSchemas(cfg.TypesPattern)
		if lerr != nil {
			return nil, fmt.Errorf("load types: %w", lerr)
		}

		reg, diags, err = schema.Build(&schema.File{Version: "1", Types: types})
	} else {
		reg, diags, err = schema.Load(cfg.SchemaPath)
	}

	if diags != nil {
		for _, w := range diags.Warnings {
			fmt.Fprintf(out, "schema warning: %s\n", w)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	return reg, nil
}

func openRepository(dbPath string, reg *schema.Registry) (storage.Repository, func(), error) {
	if strings.TrimSpace(dbPath) == "" {
		return memory.New(reg), func() {}, nil
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	store, err := sqlite.Open(dbPath, reg)
	if err != nil {
		return nil, nil, fmt.Errorf("open content store: %w", err)
	}

	return store, func() { _ = store.Close() }, nil
}

func report(out io.Writer, name string, res *content.Result) error {
	for _, obj := range res.Objects {
		if _, err := fmt.Fprintf(out, "%s: %s %s\n", name, obj.Type(), obj.ID()); err != nil {
			return err
		}
	}

	if res.Diagnostics == nil {
		return nil
	}

	for _, d := range res.Diagnostics.All() {
		if _, err := fmt.Fprintf(out, "%s: %s\n", d.Severity, d); err != nil {
			return err
		}
	}

	return nil
}
