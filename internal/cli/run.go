package cli

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cmut-dev/cmut/internal/astfront"
	"github.com/cmut-dev/cmut/internal/catalogue"
	"github.com/cmut-dev/cmut/internal/cerrors"
	"github.com/cmut-dev/cmut/internal/config"
	"github.com/cmut-dev/cmut/internal/driver"
	"github.com/cmut-dev/cmut/internal/manifestio"
	"github.com/cmut-dev/cmut/internal/rewriter"
)

var runCmd = &cobra.Command{
	Use:   "run [files...] [-- compiler-flags...]",
	Short: "Instrument one or more C/C++ translation units",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("mutation-info-file", "", "output manifest path (required)")
	runCmd.Flags().Bool("no-mutation-opts", false, "disable redundancy pruning")
	runCmd.Flags().Bool("only-track-mutant-coverage", false, "emit coverage recorders in place of mutants")
	runCmd.Flags().Bool("dump-asts", false, "dump each translation unit's AST to standard error")
	runCmd.Flags().Bool("mutant-pass", false, "tree-only pass; requires --mutation-info-file")
	runCmd.Flags().String("enabled-mutations-file", "", "restrict emitted variants to the ids in this manifest")
	runCmd.Flags().String("compiler", "", "front-end compiler executable (default clang++)")
	runCmd.Flags().Int("workers", 0, "worker pool size (default runtime.NumCPU())")
	runCmd.Flags().BoolP("verbose", "v", false, "enable verbose logging")
}

func runRun(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	mutationInfoFile, _ := flags.GetString("mutation-info-file")
	noMutationOpts, _ := flags.GetBool("no-mutation-opts")
	coverageOnly, _ := flags.GetBool("only-track-mutant-coverage")
	dumpASTs, _ := flags.GetBool("dump-asts")
	mutantPass, _ := flags.GetBool("mutant-pass")
	enabledMutationsFile, _ := flags.GetString("enabled-mutations-file")
	compiler, _ := flags.GetString("compiler")
	workers, _ := flags.GetInt("workers")
	verbose, _ := flags.GetBool("verbose")

	var compilerFlags []string
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		compilerFlags = args[dash:]
		args = args[:dash]
	}

	wd, err := os.Getwd()
	if err != nil {
		return cerrors.Argument("getting working directory: %v", err)
	}
	cfgFile, err := config.Load(wd)
	if err != nil {
		return err
	}
	cfgFile.ApplyDefaults(&mutationInfoFile, &enabledMutationsFile, &compiler, &workers, &compilerFlags)

	if mutationInfoFile == "" {
		if mutantPass {
			return cerrors.Argument("--mutant-pass requires --mutation-info-file")
		}
		return cerrors.Argument("--mutation-info-file is required")
	}

	setupLogging(verbose)

	var enabled *rewriter.EnabledSet
	if enabledMutationsFile != "" {
		enabled, err = loadEnabledSet(enabledMutationsFile)
		if err != nil {
			return err
		}
	}

	front := astfront.NewFrontEnd(astfront.ExecCommandRunner{}, compiler)
	if dumpASTs {
		front.OnDump(func(filename string, dump []byte) {
			fmt.Fprintf(os.Stderr, "=== AST dump: %s ===\n%s\n", filename, dump)
		})
	}

	cfg := driver.Config{
		Front:         front,
		Workers:       workers,
		Verbose:       verbose,
		Catalogue:     catalogue.Options{Optimise: !noMutationOpts},
		CoverageOnly:  coverageOnly,
		MutantPass:    mutantPass,
		Enabled:       enabled,
		CompilerFlags: compilerFlags,
	}

	report, manifests, runErr := driver.Run(args, cfg)
	if report != nil {
		printReport(cmd, report)
	}

	mf, err := os.Create(mutationInfoFile)
	if err != nil {
		return cerrors.ManifestWrite(mutationInfoFile, err)
	}
	defer mf.Close()
	if err := driver.WriteManifest(mf, manifests); err != nil {
		return cerrors.ManifestWrite(mutationInfoFile, err)
	}

	if runErr != nil {
		return runErr
	}
	return nil
}

// setupLogging mirrors cmd/selene/main.go's verbose switch: silent by
// default, and when verbose additionally tees to a rotated file so a
// batch run over many translation units doesn't grow one log file
// without bound.
func setupLogging(verbose bool) {
	if !verbose {
		log.SetOutput(io.Discard)
		return
	}
	rotated := &lumberjack.Logger{
		Filename:   "cmut.log",
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotated))
}

func loadEnabledSet(path string) (*rewriter.EnabledSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cerrors.ManifestRead(path, err)
	}
	defer f.Close()
	doc, err := manifestio.DecodeDocument(f)
	if err != nil {
		return nil, cerrors.ManifestRead(path, err)
	}
	return rewriter.NewEnabledSet(manifestio.CollectIDs(doc)), nil
}

// printReport renders the mutation summary as a table of per-file
// counts with a totals footer when stdout is a terminal, or otherwise as
// plain greppable lines that give the totals, the per-kind counts and
// the per-file counts (SPEC_FULL.md's TTY-aware summary rule).
func printReport(cmd *cobra.Command, report *driver.Report) {
	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprint(out, renderReportTable(report))
		return
	}
	fmt.Fprintf(out, "run %s: %d file(s), %d failed, %d mutation(s)\n", report.RunID, report.Files, report.FilesFailed, report.TotalMutants)
	for _, kind := range sortedKeys(report.ByKind) {
		fmt.Fprintf(out, "  %s: %d\n", kind, report.ByKind[kind])
	}
	for _, file := range sortedKeys(report.ByFile) {
		fmt.Fprintf(out, "  %s: %d\n", file, report.ByFile[file])
	}
}

func renderReportTable(report *driver.Report) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"File", "Mutations"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, file := range sortedKeys(report.ByFile) {
		table.Append([]string{file, fmt.Sprintf("%d", report.ByFile[file])})
	}
	table.SetFooter([]string{fmt.Sprintf("%d file(s), %d failed", report.Files, report.FilesFailed), fmt.Sprintf("%d", report.TotalMutants)})
	table.Render()
	return buf.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
