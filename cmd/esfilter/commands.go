package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"esfilter/internal/repositories/elsearch"
	"esfilter/pkg/esfilter"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "esfilter",
		Short: "Compile compact filters into Elasticsearch queries",
		Long: `esfilter turns a flat filter map such as

  {"year(min)": 1973, "id(not)": "0002", "author": null}

into an Elasticsearch bool query, and sort tokens such as "^year" or
"name:desc" into a sort clause. Operators: not, min, max, any, none, all.`,
		SilenceUsage: true,
		Version:      version,
	}

	rootCmd.PersistentFlags().String("missing", "legacy", "rendering of null values (legacy, exists)")
	rootCmd.PersistentFlags().Bool("pretty", true, "indent the output")

	rootCmd.AddCommand(
		compileCmd(),
		bodyCmd(),
	)

	return rootCmd
}

func compileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Print the bool query compiled from a filter",
		Example: `  esfilter compile --filter '{"year(min)": 1973, "id(any)": ["1", "2"]}'
  esfilter compile --file filter.yaml --sort ^year`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			compiler, err := compilerFromFlags(cmd)
			if err != nil {
				return err
			}
			f, err := filterFromFlags(cmd)
			if err != nil {
				return err
			}
			tokens, _ := cmd.Flags().GetStringArray("sort")

			q, err := compiler.Compile(f)
			if err != nil {
				return err
			}
			sort, err := esfilter.CompileSort(tokens)
			if err != nil {
				return err
			}

			out := map[string]interface{}{"filter": q}
			if len(sort) > 0 {
				out["sort"] = sort
			}
			return writeJSON(cmd, out)
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().StringArray("sort", nil, "sort token, ^field or field:asc|desc (repeatable)")

	return cmd
}

func bodyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "body",
		Short: "Print the full _search request body",
		Example: `  esfilter body --text "My book" --fields name --filter '{"year(min)": 1973}' --sort ^year --limit 15`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			compiler, err := compilerFromFlags(cmd)
			if err != nil {
				return err
			}
			f, err := filterFromFlags(cmd)
			if err != nil {
				return err
			}

			params := elsearch.SearchParams{Filter: f}
			params.Text, _ = cmd.Flags().GetString("text")
			params.Fields, _ = cmd.Flags().GetStringSlice("fields")
			params.Sort, _ = cmd.Flags().GetStringArray("sort")
			if cmd.Flags().Changed("limit") {
				n, _ := cmd.Flags().GetInt("limit")
				params.Limit = &n
			}
			if cmd.Flags().Changed("offset") {
				n, _ := cmd.Flags().GetInt("offset")
				params.Offset = &n
			}

			body, err := elsearch.BuildSearchBody(params, compiler)
			if err != nil {
				return err
			}
			return writeJSON(cmd, body)
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().String("text", "", "free text query")
	cmd.Flags().StringSlice("fields", nil, "fields searched by --text")
	cmd.Flags().StringArray("sort", nil, "sort token, ^field or field:asc|desc (repeatable)")
	cmd.Flags().Int("limit", 0, "page size")
	cmd.Flags().Int("offset", 0, "offset of the first hit")

	return cmd
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("filter", "", "filter as a JSON object")
	cmd.Flags().String("file", "", "read the filter from a .json, .yaml or .yml file (- for stdin JSON)")
	cmd.MarkFlagsMutuallyExclusive("filter", "file")
}

func compilerFromFlags(cmd *cobra.Command) (esfilter.Compiler, error) {
	name, _ := cmd.Flags().GetString("missing")
	style, err := esfilter.ParseMissingStyle(name)
	if err != nil {
		return esfilter.Compiler{}, err
	}
	return esfilter.Compiler{Missing: style}, nil
}

func filterFromFlags(cmd *cobra.Command) (esfilter.Filter, error) {
	if raw, _ := cmd.Flags().GetString("filter"); raw != "" {
		return esfilter.ParseJSON([]byte(raw))
	}

	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		return esfilter.Filter{}, nil
	}
	return readFilterFile(cmd.InOrStdin(), path)
}

func readFilterFile(stdin io.Reader, path string) (esfilter.Filter, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return esfilter.Filter{}, fmt.Errorf("reading filter file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var f esfilter.Filter
		if err := yaml.Unmarshal(data, &f); err != nil {
			return esfilter.Filter{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		return f, nil
	case ".json", "":
		return esfilter.ParseJSON(data)
	}
	return esfilter.Filter{}, errors.New("filter file must be .json, .yaml or .yml")
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
