package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/creditgest/internal/extract"
	"github.com/dgallion1/creditgest/internal/ingest"
	"github.com/dgallion1/creditgest/internal/parser"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	var (
		profilePath string
		verbose     bool
	)
	cmd := &cobra.Command{
		Use:   "extract <file.xml>",
		Short: "Extract a report from one bureau document and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			profile, err := loadProfile(profilePath)
			if err != nil {
				return fmt.Errorf("profile: %w", err)
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return runExtract(cmd.OutOrStdout(), extract.NewExtractor(profile, nil, log), data)
		},
	}
	cmd.Flags().StringVar(&profilePath, "profile", "", "YAML extraction profile (default: built-in)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log account detection details to stderr")
	return cmd
}

func runExtract(w io.Writer, ex *extract.Extractor, data []byte) error {
	payload, err := ingest.Decompress(data, 0)
	if err != nil {
		return err
	}
	rep, err := ex.Extract(payload)
	if err != nil {
		if parser.IsStructural(err) {
			return fmt.Errorf("invalid XML: %w", err)
		}
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
