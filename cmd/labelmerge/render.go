package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JonMunkholm/labelmerge/internal/core"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

// renderOptions is everything one render needs.
type renderOptions struct {
	Input     string
	Format    string
	Out       string // File, directory, or "-" for stdout
	Overrides core.Mapping
	MaxSize   int64
	MaxRows   int
}

// renderResult reports what a render produced.
type renderResult struct {
	Path    string
	Summary core.Summary
}

var renderCmd = &cobra.Command{
	Use:   "render FILE",
	Short: "Write a printable label document for an address file",
	Long: `Render reads FILE, detects the address columns, and writes an HTML label
document for the chosen Avery format.

Columns that detection gets wrong can be set by hand with --map, which may be
repeated. An empty column unsets a field:

  labelmerge render contacts.csv --map name="Display Name" --map company=

Column names may contain spaces, so LABELMERGE_MAP separates pairs with ";":

  LABELMERGE_MAP='name=Display Name;company=' labelmerge render contacts.csv

The document is written to --out. A directory (the default is the current
one) receives labels-<format>-<date>.html; "-" writes to stdout.

With --watch, the document is rewritten every time FILE changes until the
command is interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides, err := parseMapFlags(mapPairs(cmd))
		if err != nil {
			return err
		}
		opts := renderOptions{
			Input:     args[0],
			Format:    viper.GetString("format"),
			Out:       viper.GetString("out"),
			Overrides: overrides,
			MaxSize:   viper.GetInt64("max-size"),
			MaxRows:   viper.GetInt("max-rows"),
		}
		if _, ok := core.Lookup(opts.Format); !ok {
			return &core.UnknownFormatError{ID: opts.Format}
		}

		if err := renderAndReport(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
			if !viper.GetBool("watch") {
				return err
			}
			// Keep watching; the next save may fix the file.
			slog.Error("render failed", "file", opts.Input, "error", err)
		}
		if viper.GetBool("watch") {
			return watchAndRender(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().StringP("format", "f", core.DefaultFormatID, "Avery format id (see `labelmerge formats`)")
	renderCmd.Flags().String("out", ".", `output file or directory, or "-" for stdout`)
	renderCmd.Flags().StringArray("map", nil, "override a field's column as field=Column (repeatable)")
	renderCmd.Flags().BoolP("watch", "w", false, "re-render whenever the input file changes")
	addIngestFlags(renderCmd)
}

// mapEnv holds --map pairs separated by mapEnvSep. It is read only when the
// flag is not given.
const (
	mapEnv    = "LABELMERGE_MAP"
	mapEnvSep = ";"
)

// mapPairs returns the --map values, falling back to mapEnv.
func mapPairs(cmd *cobra.Command) []string {
	if cmd.Flags().Changed("map") {
		pairs, _ := cmd.Flags().GetStringArray("map")
		return pairs
	}
	if v, ok := os.LookupEnv(mapEnv); ok {
		return splitMapEnv(v)
	}
	return nil
}

// splitMapEnv splits an environment value into pairs, dropping blanks.
func splitMapEnv(v string) []string {
	var pairs []string
	for _, pair := range strings.Split(v, mapEnvSep) {
		if pair = strings.TrimSpace(pair); pair != "" {
			pairs = append(pairs, pair)
		}
	}
	return pairs
}

// parseMapFlags turns field=Column pairs into a mapping override.
func parseMapFlags(pairs []string) (core.Mapping, error) {
	m := make(core.Mapping, len(pairs))
	for _, pair := range pairs {
		key, header, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --map %q: want field=Column", pair)
		}
		field := core.Field(strings.TrimSpace(key))
		if !field.Valid() {
			return nil, fmt.Errorf("invalid --map %q: unknown field %q (fields: %s)", pair, key, fieldNames())
		}
		m[field] = strings.TrimSpace(header)
	}
	return m, nil
}

func fieldNames() string {
	names := make([]string, 0, len(core.Fields()))
	for _, spec := range core.Fields() {
		names = append(names, string(spec.Key))
	}
	return strings.Join(names, ", ")
}

// renderFile runs the whole pipeline for one input and writes the document.
func renderFile(ctx context.Context, opts renderOptions, stdout io.Writer) (renderResult, error) {
	g, ok := core.Lookup(opts.Format)
	if !ok {
		return renderResult{}, &core.UnknownFormatError{ID: opts.Format}
	}

	ds, err := loadDataset(opts.Input, opts.MaxSize, opts.MaxRows)
	if err != nil {
		return renderResult{}, err
	}
	if ds.Truncated {
		slog.Warn("input truncated at row ceiling", "file", opts.Input, "max_rows", opts.MaxRows)
	}

	mapping := core.Detect(ds.Headers).Mapping
	for field, header := range opts.Overrides {
		if header == "" {
			delete(mapping, field)
			continue
		}
		if !containsHeader(ds.Headers, header) {
			return renderResult{}, fmt.Errorf("--map %s=%q: no such column (columns: %s)",
				field, header, strings.Join(ds.Headers, ", "))
		}
		mapping[field] = header
	}
	if missing := core.MissingFields(mapping, core.RequiredFields()); len(missing) > 0 {
		return renderResult{}, fmt.Errorf("incomplete mapping: no column for %v; set one with --map field=Column", missing)
	}

	labels := core.Layout(ds.Rows, mapping)
	var buf bytes.Buffer
	if err := core.Document(labels, g).Render(ctx, &buf); err != nil {
		return renderResult{}, fmt.Errorf("render labels: %w", err)
	}

	result := renderResult{Summary: core.Summarize(labels, g)}
	if opts.Out == "-" {
		_, err := buf.WriteTo(stdout)
		return result, err
	}

	result.Path = outputPath(opts.Out, g.ID, time.Now())
	if dir := filepath.Dir(result.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return renderResult{}, fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(result.Path, buf.Bytes(), 0o644); err != nil {
		return renderResult{}, fmt.Errorf("write document: %w", err)
	}
	return result, nil
}

// outputPath resolves --out: an existing directory or a trailing separator
// means "put the conventional file name in here".
func outputPath(out, formatID string, now time.Time) string {
	if out == "" {
		out = "."
	}
	name := core.OutputFilename(formatID, now)
	if strings.HasSuffix(out, string(os.PathSeparator)) || strings.HasSuffix(out, "/") {
		return filepath.Join(out, name)
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, name)
	}
	return out
}

func containsHeader(headers []string, h string) bool {
	for _, candidate := range headers {
		if candidate == h {
			return true
		}
	}
	return false
}

// renderAndReport renders once and tells the user where the document went.
// The report goes to stderr when the document itself is on stdout.
func renderAndReport(ctx context.Context, opts renderOptions, stdout, stderr io.Writer) error {
	result, err := renderFile(ctx, opts, stdout)
	if err != nil {
		return err
	}

	slog.Info("labels rendered",
		"file", opts.Input,
		"format", result.Summary.FormatID,
		"labels", result.Summary.LabelCount,
		"sheets", result.Summary.SheetsNeeded,
	)

	report := stdout
	if result.Path == "" {
		report = stderr
	}
	where := result.Path
	if where == "" {
		where = "stdout"
	}
	fmt.Fprintf(report, "%d labels on %d sheets of %s -> %s\n",
		result.Summary.LabelCount, result.Summary.SheetsNeeded, result.Summary.FormatName, where)
	return nil
}

// watchAndRender re-renders after each change to the input file until ctx
// is cancelled. The parent directory is watched because editors often save
// by replacing the file.
func watchAndRender(ctx context.Context, opts renderOptions, stdout, stderr io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(opts.Input)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	slog.Info("watching for changes", "file", target)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
				debounce = time.After(watchDebounce)
			}

		case <-debounce:
			debounce = nil
			if err := renderAndReport(ctx, opts, stdout, stderr); err != nil {
				slog.Error("render failed", "file", opts.Input, "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}
