package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JonMunkholm/labelmerge/internal/core"
)

// fieldReport is one line of the detect output.
type fieldReport struct {
	Field      core.Field `json:"field" yaml:"field"`
	Label      string     `json:"label" yaml:"label"`
	Required   bool       `json:"required" yaml:"required"`
	Header     string     `json:"header,omitempty" yaml:"header,omitempty"`
	Confidence float64    `json:"confidence" yaml:"confidence"`
	Level      string     `json:"level" yaml:"level"`
}

// detectReport is what `labelmerge detect` prints.
type detectReport struct {
	File      string        `json:"file" yaml:"file"`
	Rows      int           `json:"rows" yaml:"rows"`
	Truncated bool          `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Headers   []string      `json:"headers" yaml:"headers"`
	Fields    []fieldReport `json:"fields" yaml:"fields"`
	Missing   []core.Field  `json:"missing,omitempty" yaml:"missing,omitempty"`
	Preview   []string      `json:"preview,omitempty" yaml:"preview,omitempty"`
}

var detectCmd = &cobra.Command{
	Use:   "detect FILE",
	Short: "Show which column each address field would be read from",
	Long: `Detect reads FILE and reports, for every address field, the column that
auto-detection picked and how confident the match is. Use it to check a file
before rendering, and to find the --map overrides a render needs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0], viper.GetInt64("max-size"), viper.GetInt("max-rows"))
		if err != nil {
			return err
		}
		report := buildDetectReport(ds)
		return printOutput(cmd.OutOrStdout(), report, func(w io.Writer) error {
			return writeDetectText(w, report)
		})
	},
}

func init() {
	addIngestFlags(detectCmd)
}

// addIngestFlags registers the file limits shared by detect and render.
func addIngestFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("max-size", core.DefaultMaxFileSize, "largest input file accepted, in bytes")
	cmd.Flags().Int("max-rows", core.MaxRows, fmt.Sprintf("data rows kept from the input, at most %d; extra rows are ignored", core.MaxRows))
}

// loadDataset reads and ingests one input file.
func loadDataset(path string, maxSize int64, maxRows int) (*core.Dataset, error) {
	data, err := readInput(path, maxSize)
	if err != nil {
		return nil, err
	}
	return core.IngestWithOptions(data, path, core.IngestOptions{MaxRows: maxRows, MaxBytes: maxSize})
}

func buildDetectReport(ds *core.Dataset) detectReport {
	det := core.Detect(ds.Headers)

	report := detectReport{
		File:      ds.FileName,
		Rows:      ds.RowCount,
		Truncated: ds.Truncated,
		Headers:   ds.Headers,
		Missing:   core.MissingFields(det.Mapping, core.RequiredFields()),
		Preview:   core.PreviewLabel(ds.Rows, det.Mapping),
	}
	for _, spec := range core.Fields() {
		score := det.Confidence[spec.Key]
		report.Fields = append(report.Fields, fieldReport{
			Field:      spec.Key,
			Label:      spec.Label,
			Required:   spec.Required,
			Header:     det.Mapping.Header(spec.Key),
			Confidence: score,
			Level:      core.Level(score).Label,
		})
	}
	return report
}

func writeDetectText(w io.Writer, r detectReport) error {
	fmt.Fprintf(w, "%s: %d rows", r.File, r.Rows)
	if r.Truncated {
		fmt.Fprint(w, " (truncated)")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tCOLUMN\tCONFIDENCE")
	for _, f := range r.Fields {
		label := f.Label
		if f.Required {
			label += " *"
		}
		header := f.Header
		if header == "" {
			header = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s (%.0f%%)\n", label, header, f.Level, f.Confidence*100)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Missing) > 0 {
		fmt.Fprintf(w, "\nmissing required fields: %v (set them with --map field=Column)\n", r.Missing)
	}
	if len(r.Preview) > 0 {
		fmt.Fprintln(w, "\nfirst label:")
		for _, line := range r.Preview {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	return nil
}
