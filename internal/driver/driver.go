// Package driver orchestrates a full run of the instrumenter across one
// or more translation units: discovery, rewriting, and manifest
// assembly, fanned out over a worker pool and reduced by a single
// collector goroutine — the same producer/worker/collector shape the
// teacher's internal/runner.Run uses for "run one mutant under go
// test", adapted here to "discover+rewrite one translation unit".
package driver

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/cmut-dev/cmut/internal/astfront"
	"github.com/cmut-dev/cmut/internal/catalogue"
	"github.com/cmut-dev/cmut/internal/cerrors"
	"github.com/cmut-dev/cmut/internal/ids"
	"github.com/cmut-dev/cmut/internal/manifestio"
	"github.com/cmut-dev/cmut/internal/rewriter"
	"github.com/cmut-dev/cmut/internal/visitor"
)

// FileSystem is the seam production code goes through and tests fake,
// covering reading each translation unit and writing its instrumented
// output.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
}

// RealFileSystem implements FileSystem using the os package.
type RealFileSystem struct{}

func (RealFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
func (RealFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}
func (RealFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Config controls one driver run.
type Config struct {
	FS        FileSystem
	Front     *astfront.FrontEnd
	Workers   int
	Verbose   bool
	Catalogue catalogue.Options

	// CoverageOnly corresponds to --only-track-mutant-coverage.
	CoverageOnly bool
	// MutantPass corresponds to --mutant-pass: build the mutation tree
	// and manifest without writing any instrumented source, for a
	// planning pass over --enabled-mutations-file candidates.
	MutantPass bool
	// Enabled is the parsed --enabled-mutations-file content, or nil.
	Enabled *rewriter.EnabledSet
	// CompilerFlags are passthrough `--` flags forwarded verbatim to the
	// front end and never interpreted here (compiling is out of scope).
	CompilerFlags []string
	// OutputDir is where instrumented translation units are written;
	// empty means overwrite in place.
	OutputDir string
}

// Report is the per-run summary: counts by mutation kind and by file,
// printed before the manifest is written.
type Report struct {
	RunID        string
	Files        int
	FilesFailed  int
	TotalMutants int
	ByKind       map[string]int
	ByFile       map[string]int
}

type tuResult struct {
	file         string
	err          error
	manifestFile *manifestio.File
	mutantCount  int
	byKind       map[string]int
}

// Run processes every path in paths, in the order given (never
// re-sorted — the caller is responsible for determinism), and returns
// the run's summary report plus the assembled per-TU manifest entries.
// A ParseError on one TU is logged and that TU is skipped; sibling TUs
// still run; the returned error is non-nil only when at least one TU
// failed, so the CLI can set exit code 1 while still having written a
// manifest for everything that succeeded.
func Run(paths []string, cfg Config) (*Report, []*manifestio.File, error) {
	if len(paths) == 0 {
		return nil, nil, cerrors.Argument("no translation units given")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.FS == nil {
		cfg.FS = RealFileSystem{}
	}

	runID := uuid.NewString()
	if cfg.Verbose {
		log.Printf("run %s: %d translation unit(s), %d worker(s)", runID, len(paths), cfg.Workers)
	}

	alloc := ids.NewAllocator()

	tasks := make(chan string, cfg.Workers*2)
	results := make(chan tuResult, cfg.Workers*2)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range tasks {
				results <- processOne(path, cfg, alloc)
			}
		}()
	}

	go func() {
		for _, p := range paths {
			tasks <- p
		}
		close(tasks)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Results must be re-assembled in caller-given order even though
	// workers finish out of order, since the manifest's file ordering
	// is part of the run's determinism guarantee.
	pathIndex := make(map[string]int, len(paths))
	for i, p := range paths {
		pathIndex[p] = i
	}
	ordered := make([]*tuResult, len(paths))

	report := &Report{RunID: runID, ByKind: map[string]int{}, ByFile: map[string]int{}}
	for res := range results {
		res := res
		ordered[pathIndex[res.file]] = &res
		report.Files++
		if res.err != nil {
			report.FilesFailed++
			if cfg.Verbose {
				log.Printf("%s: %v", res.file, res.err)
			}
			continue
		}
		report.TotalMutants += res.mutantCount
		report.ByFile[res.file] = res.mutantCount
		for k, v := range res.byKind {
			report.ByKind[k] += v
		}
	}

	var manifestFiles []*manifestio.File
	var firstErr error
	for _, r := range ordered {
		if r == nil || r.err != nil {
			if r != nil && firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		manifestFiles = append(manifestFiles, r.manifestFile)
	}

	if firstErr != nil {
		return report, manifestFiles, fmt.Errorf("one or more translation units failed: %w", firstErr)
	}
	return report, manifestFiles, nil
}

// processOne discovers, finalises, rewrites, and (unless MutantPass)
// writes one translation unit. Discovery and parsing need no
// coordination with any other worker, but the ID allocation that
// happens during rewriting does: alloc.Lock() is held from this TU's
// first Peek call to Rewrite's own last Reserve call, so a
// concurrently-running sibling TU's Reserve calls can never land in
// between and leave either TU's global ID range non-contiguous. See
// DESIGN.md.
func processOne(path string, cfg Config, alloc *ids.Allocator) tuResult {
	raw, err := cfg.FS.ReadFile(path)
	if err != nil {
		return tuResult{file: path, err: cerrors.CompileDB(path, "read source: %w", err)}
	}
	source := string(raw)

	root, err := cfg.Front.Parse(path, cfg.CompilerFlags)
	if err != nil {
		return tuResult{file: path, err: cerrors.Parse(path, err)}
	}

	v := visitor.New(path, source)
	muts, treeRoot := v.Discover(root)

	opts := rewriter.Options{Catalogue: cfg.Catalogue, CoverageOnly: cfg.CoverageOnly, Enabled: cfg.Enabled}

	alloc.Lock()
	firstID := alloc.Peek()
	// --mutant-pass still runs the full variant-selection and
	// ID-allocation pass so the emitted manifest's IDs are exactly what
	// a real rewrite would assign; only the instrumented text itself is
	// discarded.
	rewritten := rewriter.Rewrite(source, v.FirstTopLevelDecl(), muts, alloc, opts)
	alloc.Unlock()

	treeRoot = treeRoot.Finalize()

	byKind := map[string]int{}
	for _, m := range muts {
		if m.GlobalID < 0 {
			continue
		}
		byKind[m.Kind.String()]++
	}

	if !cfg.MutantPass {
		destPath := path
		if cfg.OutputDir != "" {
			if err := cfg.FS.MkdirAll(cfg.OutputDir, 0o755); err != nil {
				return tuResult{file: path, err: cerrors.InternalInvariant(path, "create output dir %s: %v", cfg.OutputDir, err)}
			}
			destPath = filepath.Join(cfg.OutputDir, filepath.Base(path))
		}
		if err := cfg.FS.WriteFile(destPath, []byte(rewritten), 0o644); err != nil {
			return tuResult{file: path, err: cerrors.InternalInvariant(path, "write instrumented output to %s: %v", destPath, err)}
		}
	}

	mf := manifestio.Encode(path, firstID, treeRoot)
	return tuResult{file: path, manifestFile: mf, mutantCount: treeRoot.Count(), byKind: byKind}
}

// manifestDocument is the top-level shape of a multi-TU manifest: one
// File entry per translation unit, in the run's own deterministic
// order.
type manifestDocument struct {
	Files []*manifestio.File `json:"files"`
}

// WriteManifest marshals every TU's manifest entry as one JSON document
// to w, preserving the caller-given file order.
func WriteManifest(w io.Writer, files []*manifestio.File) error {
	data, err := json.MarshalIndent(manifestDocument{Files: files}, "", "  ")
	if err != nil {
		return cerrors.ManifestWrite("", err)
	}
	_, err = w.Write(data)
	return err
}
