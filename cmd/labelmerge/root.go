package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/labelmerge/internal/core"
	"github.com/JonMunkholm/labelmerge/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "labelmerge",
	Short: "Turn a CSV or Excel address list into printable Avery label sheets",
	Long: `labelmerge reads an address file (CSV, TSV, semicolon or pipe separated
text, or .xlsx), works out which column holds the name, street, city, state
and ZIP, and writes an HTML document laid out for an Avery label sheet.

Open the document in a browser and print at 100% scale with no margins.

Every flag can also be set from the environment with the LABELMERGE_ prefix,
e.g. LABELMERGE_FORMAT=5163 or LABELMERGE_LOG_LEVEL=debug.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("output", "o", "text", "output format for listings: text, yaml or json")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn or error")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd); err != nil {
			return err
		}
		slog.SetDefault(logging.New(cmd.ErrOrStderr(), viper.GetString("log-level"), "text"))

		switch viper.GetString("output") {
		case "text", "yaml", "json":
			return nil
		default:
			return fmt.Errorf("unknown output format %q (want text, yaml or json)", viper.GetString("output"))
		}
	}

	rootCmd.AddCommand(formatsCmd, detectCmd, renderCmd)
}

// bindFlags lets LABELMERGE_* environment variables stand in for any flag
// the user did not pass.
func bindFlags(cmd *cobra.Command) error {
	viper.SetEnvPrefix("LABELMERGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	return viper.BindPFlags(cmd.InheritedFlags())
}

// printOutput writes v as YAML or JSON, or calls text for the text format.
func printOutput(w io.Writer, v any, text func(io.Writer) error) error {
	switch viper.GetString("output") {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

// readInput loads an input file, refusing anything over maxSize before
// reading it.
func readInput(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, &core.IngestError{
			Kind:  core.ErrOversizedFile,
			File:  filepath.Base(path),
			Size:  info.Size(),
			Limit: maxSize,
		}
	}
	return os.ReadFile(path)
}
