// Command iscab lists and extracts InstallShield cabinet archives.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/meigma/iscab"
)

type config struct {
	dataPath  string
	outDir    string
	noLoose   bool
	noClobber bool
	workers   int
	verbose   bool
}

func main() {
	cfg, args := parseFlags()
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}
	command, headerPath := args[0], args[1]

	dataPath := cfg.dataPath
	if dataPath == "" {
		dataPath = filepath.Join(filepath.Dir(headerPath), iscab.DefaultDataName)
	}

	var opts []iscab.Option
	if cfg.verbose {
		opts = append(opts, iscab.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))))
	}

	cab, err := iscab.Open(headerPath, dataPath, opts...)
	if err != nil {
		log.Fatal(err)
	}
	defer cab.Close() //nolint:errcheck // process exit releases the volume anyway

	switch command {
	case "list":
		err = list(os.Stdout, cab)
	case "groups":
		err = listGroups(os.Stdout, cab)
	case "components":
		err = listComponents(os.Stdout, cab)
	case "extract":
		err = extract(cab, cfg)
	default:
		err = fmt.Errorf("unknown command: %s", command)
	}
	if err != nil {
		log.Fatal(err) //nolint:gocritic // exitAfterDefer is intentional - cleanup is best-effort
	}
}

func list(w io.Writer, cab *iscab.CabinetFile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tFLAGS\tSIZE\tCSIZE\tOFFSET\tPATH")
	for _, f := range cab.Files() {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\n",
			f.Index, f.Flags, f.ExpandedSize, f.CompressedSize, f.DataOffset, cab.FilePath(f))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := cab.Stats()
	fmt.Fprintf(w, "%d files (%d compressed, %d loose, %d invalid), %d dirs, %d groups, %d components\n",
		s.Files, s.Compressed, s.Loose, s.Invalid, s.Dirs, s.Groups, s.Components)
	return nil
}

func listGroups(w io.Writer, cab *iscab.CabinetFile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tFIRST\tLAST")
	for _, g := range cab.Groups() {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", g.Name, g.FirstFile, g.LastFile)
	}
	return tw.Flush()
}

func listComponents(w io.Writer, cab *iscab.CabinetFile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPONENT\tGROUPS")
	for _, comp := range cab.Components() {
		fmt.Fprintf(tw, "%s\t%s\n", comp.Name, strings.Join(comp.FileGroups, ", "))
	}
	return tw.Flush()
}

func extract(cab *iscab.CabinetFile, cfg config) error {
	opts := []iscab.ExtractOption{
		iscab.ExtractWithOverwrite(!cfg.noClobber),
		iscab.ExtractWithLooseFiles(!cfg.noLoose),
	}
	if cfg.workers > 1 {
		opts = append(opts, iscab.ExtractWithWorkers(cfg.workers))
	}
	if cfg.verbose {
		opts = append(opts, iscab.ExtractWithProgress(func(ev iscab.ProgressEvent) {
			if ev.Stage == iscab.StageExtracting || ev.Stage == iscab.StageCopyingLoose {
				fmt.Fprintf(os.Stderr, "[%d/%d] %s %s\n", ev.FilesDone, ev.FilesTotal, ev.Stage, ev.Path)
			}
		}))
	}

	report, err := cab.Extract(context.Background(), cfg.outDir, opts...)
	if err != nil {
		return err
	}

	for _, warn := range report.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s mismatch: %s\n", warn.Path, warn.Kind, warn.Detail)
	}
	for _, fail := range report.Failures {
		fmt.Fprintf(os.Stderr, "error: %s: %v\n", fail.Path, fail.Err)
	}

	fmt.Printf("extracted=%d loose=%d missing=%d skipped=%d errors=%d elapsed=%s\n",
		report.Extracted, report.LooseCopied, report.LooseMissing, report.Skipped,
		report.Errors(), report.Elapsed.Round(time.Millisecond))
	if n := report.Errors(); n > 0 {
		return fmt.Errorf("%d files failed", n)
	}
	return nil
}

func parseFlags() (config, []string) {
	var cfg config
	flag.StringVar(&cfg.dataPath, "cab", "", "data volume path (default: data1.cab beside the header)")
	flag.StringVar(&cfg.outDir, "o", ".", "extraction destination")
	flag.BoolVar(&cfg.noLoose, "no-loose", false, "skip loose files")
	flag.BoolVar(&cfg.noClobber, "no-clobber", false, "keep existing destination files")
	flag.IntVar(&cfg.workers, "workers", 1, "concurrent extraction workers")
	flag.BoolVar(&cfg.verbose, "verbose", false, "log per-file activity to stderr")
	flag.Usage = usage
	flag.Parse()
	return cfg, flag.Args()
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: iscab [flags] <command> <header>

commands:
  list        print the file catalog
  groups      print file groups
  components  print components
  extract     unpack every file into the destination

flags:
`)
	flag.PrintDefaults()
}
