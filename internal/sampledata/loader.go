package sampledata

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/go-viper/mapstructure/v2"

	"content-loader/internal/common"
	"content-loader/internal/storage"
)

//go:embed lipsum.txt
var lipsum string

// ErrUnsupportedDataType is returned by LoadSample for unknown data types.
var ErrUnsupportedDataType = errors.New("unsupported sample data type")

// Sample data types understood by LoadSample.
const (
	TypeShortText = "short_text"
	TypeRichText  = "rich_text"
	TypeTerm      = "term"
	TypeImage     = "image"
	TypeFile      = "file"
)

const (
	shortTextLength = 20
	richTextLength  = 200
)

// Loader reads datasets from a content file system and produces samples.
type Loader struct {
	fsys     fs.FS
	repo     storage.Repository
	filesDir string
	termType string

	mu   sync.Mutex
	sets map[string]*DataSet
	rng  *rand.Rand
}

// Option configures a Loader.
type Option func(*Loader)

// WithFilesDir sets the directory generated images and copied files are
// written to. Defaults to "files".
func WithFilesDir(dir string) Option {
	return func(l *Loader) { l.filesDir = dir }
}

// WithRand sets the random source used for lorem ipsum offsets.
func WithRand(r *rand.Rand) Option {
	return func(l *Loader) { l.rng = r }
}

// WithTermType sets the content type created by term samples.
// Defaults to "taxonomy_term".
func WithTermType(name string) Option {
	return func(l *Loader) { l.termType = name }
}

// NewLoader returns a loader reading datasets from fsys. repo is used for
// term lookups and may be nil when no term samples are requested.
func NewLoader(fsys fs.FS, repo storage.Repository, opts ...Option) *Loader {
	l := &Loader{
		fsys:     fsys,
		repo:     repo,
		filesDir: "files",
		termType: "taxonomy_term",
		sets:     map[string]*DataSet{},
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoadDataSet returns the dataset stored at name, reading it on first use.
func (l *Loader) LoadDataSet(name string) (*DataSet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ds, ok := l.sets[name]; ok {
		return ds, nil
	}

	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	ds, err := ParseDataSet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	l.sets[name] = ds

	return ds, nil
}

// DataSetPath returns the file name of dataset file under dir.
func DataSetPath(dir, file string) string {
	return path.Join(dir, file+".data.yml")
}

// TermParams are the parameters of a term sample.
type TermParams struct {
	Name       string `mapstructure:"name"`
	Vocabulary string `mapstructure:"vocabulary"`
}

// ImageParams are the parameters of an image sample.
type ImageParams struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// FileParams are the parameters of a file sample: the destination path
// under the files directory and the source file in the content root.
type FileParams struct {
	Path string `mapstructure:"path"`
	Src  string `mapstructure:"src"`
}

// LoadSample produces one sample value of dataType.
func (l *Loader) LoadSample(ctx context.Context, dataType string, params map[string]any) (any, error) {
	switch dataType {
	case TypeShortText:
		return l.Lipsum(shortTextLength, true), nil
	case TypeRichText:
		return l.Lipsum(richTextLength, true), nil
	case TypeTerm:
		var p TermParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}

		return l.Term(ctx, p.Name, p.Vocabulary)
	case TypeImage:
		p := ImageParams{Width: 640, Height: 480}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}

		return l.Image(p.Width, p.Height)
	case TypeFile:
		var p FileParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}

		return l.File(p.Path, p.Src)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedDataType, dataType)
	}
}

func decodeParams(params map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("sample params: %w", err)
	}

	return nil
}

// Lipsum returns length characters of lorem ipsum starting at a random word.
func (l *Loader) Lipsum(length int, capitalize bool) string {
	if length <= 0 {
		return ""
	}

	var b strings.Builder

	for b.Len() < length {
		b.WriteString(l.lipsumChunk(length-b.Len(), capitalize && b.Len() == 0))
	}

	return b.String()
}

func (l *Loader) lipsumChunk(length int, capitalize bool) string {
	start := 0

	l.mu.Lock()
	if n := len(lipsum) - length; n > 0 {
		start = l.rng.IntN(n + 1)
	}
	l.mu.Unlock()

	if start > 0 {
		if i := strings.IndexByte(lipsum[start:], ' '); i >= 0 {
			start += i + 1
		} else {
			start = 0
		}
	}

	chunk := lipsum[start:min(start+length, len(lipsum))]
	chunk = strings.TrimFunc(chunk, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	if chunk == "" {
		chunk = lipsum[:min(length, len(lipsum))]
	}

	if capitalize {
		chunk = strings.ToUpper(chunk[:1]) + chunk[1:]
	}

	return chunk
}

// Term returns a reference to the term named name in vocabulary, creating
// and saving it when none exists.
func (l *Loader) Term(ctx context.Context, name, vocabulary string) (storage.Reference, error) {
	if l.repo == nil {
		return storage.Reference{}, errors.New("term samples need a repository")
	}

	if name == "" || vocabulary == "" {
		return storage.Reference{}, errors.New("term samples need a name and a vocabulary")
	}

	ts, ok := l.repo.Schema(l.termType)
	if !ok {
		return storage.Reference{}, fmt.Errorf("%w %q", storage.ErrUnknownType, l.termType)
	}

	vocabKey := "vocabulary"
	for _, k := range ts.Keys {
		if k.Source == vocabKey {
			vocabKey = k.Target
		}
	}

	found, err := l.repo.Query(ctx, l.termType, []storage.Condition{
		{Field: vocabKey, Value: vocabulary},
		{Field: "name", Value: name},
	})
	if err != nil {
		return storage.Reference{}, err
	}

	if existing, ok := common.First(found); ok {
		return storage.RefTo(existing), nil
	}

	term, err := l.repo.Create(ctx, l.termType, map[string]any{vocabKey: vocabulary})
	if err != nil {
		return storage.Reference{}, err
	}

	if err := term.SetField("name", name); err != nil {
		return storage.Reference{}, err
	}

	if err := l.repo.Save(ctx, term); err != nil {
		return storage.Reference{}, err
	}

	return storage.RefTo(term), nil
}

// Image writes a placeholder PNG of the given size and returns its path.
func (l *Loader) Image(width, height int) (string, error) {
	data, err := PlaceholderPNG(width, height)
	if err != nil {
		return "", err
	}

	return l.write(fmt.Sprintf("%dx%d.png", width, height), data)
}

// File copies src from the content root to dest under the files directory
// and returns the written path. The file name is slugified.
func (l *Loader) File(dest, src string) (string, error) {
	if dest == "" || src == "" {
		return "", errors.New("file samples need a path and a src")
	}

	data, err := fs.ReadFile(l.fsys, src)
	if err != nil {
		return "", fmt.Errorf("read sample file: %w", err)
	}

	ext := path.Ext(dest)
	name := Slugify(strings.TrimSuffix(path.Base(dest), ext), "-") + strings.ToLower(ext)

	return l.write(path.Join(path.Dir(dest), name), data)
}

func (l *Loader) write(name string, data []byte) (string, error) {
	target := filepath.Join(l.filesDir, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("prepare files directory: %w", err)
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write sample file: %w", err)
	}

	return target, nil
}
