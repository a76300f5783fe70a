package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/docmod/treedoc"
	"github.com/arthur-debert/docmod/update"
)

var (
	matchedField string
	inputFormat  string
	writeInPlace bool
	showOplog    bool
	lockTimeout  time.Duration
)

var applyCmd = &cobra.Command{
	Use:   "apply <update-spec> [file...]",
	Short: "Apply an update specification to documents",
	Long: `Apply parses an update specification and runs it against every input
document. The spec is a JSON object of operators, e.g.

  {"$pullAll": {"tags": ["stale", "old"]}, "$set": {"state": "clean"}}

or @path to load the spec from a file. Input files may be JSON (one document)
or YAML (a document stream); with no files, a JSON document is read from
stdin. Updated documents go to stdout unless --write rewrites the files in
place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&matchedField, "matched-field", "", "Array index bound to positional $ path parts")
	applyCmd.Flags().StringVar(&inputFormat, "format", "", "Force input format: json|yaml (default: by file extension)")
	applyCmd.Flags().BoolVar(&writeInPlace, "write", false, "Rewrite input files in place instead of printing")
	applyCmd.Flags().BoolVar(&showOplog, "oplog", false, "Print the $set/$unset change log for each document")
	applyCmd.Flags().DurationVar(&lockTimeout, "lock-timeout", 5*time.Second, "How long to wait for the file lock with --write")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	u, err := loadUpdateSpec(args[0])
	if err != nil {
		return err
	}

	files := args[1:]
	if len(files) == 0 {
		if writeInPlace {
			return fmt.Errorf("--write requires input files")
		}
		return applyToStdin(cmd, u)
	}

	for _, path := range files {
		if err := applyToFile(cmd, u, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// loadUpdateSpec parses the spec argument: a JSON object literal, or @path
// referencing a JSON or YAML file.
func loadUpdateSpec(arg string) (*update.Update, error) {
	var doc *treedoc.Document
	var err error

	if path, ok := strings.CutPrefix(arg, "@"); ok {
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read update spec: %w", err)
		}
		if formatFor(path) == "yaml" {
			doc, err = treedoc.ParseYAML(data)
		} else {
			doc, err = treedoc.ParseJSON(data)
		}
	} else {
		doc, err = treedoc.ParseJSON([]byte(arg))
	}
	if err != nil {
		return nil, fmt.Errorf("invalid update spec: %w", err)
	}
	return update.ParseUpdate(doc)
}

func applyToStdin(cmd *cobra.Command, u *update.Update) error {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	var docs []*treedoc.Document
	if inputFormat == "yaml" {
		docs, err = treedoc.ParseYAMLStream(data)
	} else {
		var doc *treedoc.Document
		doc, err = treedoc.ParseJSON(data)
		docs = []*treedoc.Document{doc}
	}
	if err != nil {
		return err
	}

	return applyAndEmit(cmd.OutOrStdout(), u, docs, inputFormat)
}

func applyToFile(cmd *cobra.Command, u *update.Update, path string) error {
	format := formatFor(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var docs []*treedoc.Document
	if format == "yaml" {
		docs, err = treedoc.ParseYAMLStream(data)
	} else {
		var doc *treedoc.Document
		doc, err = treedoc.ParseJSON(data)
		docs = []*treedoc.Document{doc}
	}
	if err != nil {
		return err
	}

	if !writeInPlace {
		return applyAndEmit(cmd.OutOrStdout(), u, docs, format)
	}

	out, err := applyAll(cmd, u, docs, format)
	if err != nil {
		return err
	}
	return withFileLock(cmd.Context(), path, lockTimeout, func() error {
		return os.WriteFile(path, out, 0644)
	})
}

func applyAndEmit(w io.Writer, u *update.Update, docs []*treedoc.Document, format string) error {
	for i, doc := range docs {
		res, err := u.ApplyTo(doc, matchedField)
		if err != nil {
			return err
		}
		logResult(res)

		out, err := marshalDoc(doc, format)
		if err != nil {
			return err
		}
		if format == "yaml" {
			if i > 0 {
				fmt.Fprintln(w, "---")
			}
			fmt.Fprint(w, string(out))
		} else {
			fmt.Fprintln(w, string(out))
		}

		if showOplog {
			if err := emitOplog(w, res); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyAll updates every document and renders the whole file body for an
// in-place rewrite. Oplogs still go to stdout.
func applyAll(cmd *cobra.Command, u *update.Update, docs []*treedoc.Document, format string) ([]byte, error) {
	var body strings.Builder
	for i, doc := range docs {
		res, err := u.ApplyTo(doc, matchedField)
		if err != nil {
			return nil, err
		}
		logResult(res)

		out, err := marshalDoc(doc, format)
		if err != nil {
			return nil, err
		}
		if format == "yaml" {
			if i > 0 {
				body.WriteString("---\n")
			}
			body.Write(out)
		} else {
			body.Write(out)
			body.WriteString("\n")
		}

		if showOplog {
			if err := emitOplog(cmd.OutOrStdout(), res); err != nil {
				return nil, err
			}
		}
	}
	return []byte(body.String()), nil
}

func emitOplog(w io.Writer, res *update.Result) error {
	out, err := treedoc.MarshalJSON(res.Oplog)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func logResult(res *update.Result) {
	slog.Info("update applied",
		"change_id", res.ChangeID,
		"noop", res.NoOp,
		"fields", strings.Join(res.Fields, ","))
}

func marshalDoc(doc *treedoc.Document, format string) ([]byte, error) {
	if format == "yaml" {
		return treedoc.MarshalYAML(doc)
	}
	return treedoc.MarshalJSON(doc)
}

// formatFor picks the document format: the --format flag wins, then the file
// extension, defaulting to JSON.
func formatFor(path string) string {
	if inputFormat != "" {
		return inputFormat
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}
