package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/daylog/pkg/journal"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every entry to a JSON backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		svc, closeDB, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		data, err := svc.Export(cmd.Context())
		if err != nil {
			return describeError(err)
		}

		if out == "" || out == "-" {
			return printJSON(cmd.OutOrStdout(), data)
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create '%s': %w", out, err)
		}
		if err := printJSON(f, data); err != nil {
			f.Close()
			return fmt.Errorf("failed to write '%s': %w", out, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write '%s': %w", out, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entries to %s.\n", len(data.Entries), out)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Load entries from a JSON backup",
	Long: `Load entries from a backup written by 'daylog export' ('-' reads stdin). Days
that already have an entry are skipped unless --replace is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		replace, _ := cmd.Flags().GetBool("replace")

		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open '%s': %w", args[0], err)
			}
			defer f.Close()
			r = f
		}

		var data journal.ExportData
		if err := json.NewDecoder(r).Decode(&data); err != nil {
			return fmt.Errorf("failed to parse backup: %w", err)
		}

		svc, closeDB, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		res, err := svc.Import(cmd.Context(), &data, journal.ImportOptions{Replace: replace})
		if err != nil {
			return describeError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d, replaced %d, skipped %d entries.\n", res.Imported, res.Replaced, res.Skipped)
		return nil
	},
}

func initBackupCmd() {
	exportCmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
	importCmd.Flags().Bool("replace", false, "Overwrite entries on days that already have one")
}
