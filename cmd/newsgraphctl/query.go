package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"newsgraph/aql"
	"newsgraph/config"
	"newsgraph/graphdb"

	"github.com/spf13/cobra"
)

var (
	queryDB    string
	queryFile  string
	queryText  string
	queryBind  string
	queryBatch int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run an AQL query and print one JSON row per line",
	Long: `Run an AQL query against the news or video database.

Examples:
  newsgraphctl query --file related.aql --bind '{"key":"A1","min_depth":1,"max_depth":2}'
  newsgraphctl query --db video --aql 'FOR v IN Video LIMIT @n RETURN v' --bind '{"n":5}'`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryDB, "db", "news", "Database to query: news or video")
	queryCmd.Flags().StringVarP(&queryFile, "file", "f", "", "File holding the AQL text")
	queryCmd.Flags().StringVar(&queryText, "aql", "", "AQL text (instead of --file)")
	queryCmd.Flags().StringVarP(&queryBind, "bind", "b", "{}", "Bind parameters as a JSON object")
	queryCmd.Flags().IntVar(&queryBatch, "batch", config.DefaultBatchSize, "Cursor batch size")
}

func parseDatabase(s string) (graphdb.Database, error) {
	switch strings.ToLower(s) {
	case "news":
		return graphdb.NewsDB, nil
	case "video":
		return graphdb.VideoDB, nil
	default:
		return "", fmt.Errorf("unknown database %q (want news or video)", s)
	}
}

// buildQuery binds every parameter of bindJSON into text.
func buildQuery(text, bindJSON string) (aql.Query, error) {
	var bind map[string]any
	if err := json.Unmarshal([]byte(bindJSON), &bind); err != nil {
		return aql.Query{}, fmt.Errorf("invalid --bind: %w", err)
	}
	b := aql.New(text)
	for name, value := range bind {
		b.Bind(name, value)
	}
	return b.Build()
}

func runQuery(cmd *cobra.Command, _ []string) error {
	text := queryText
	if queryFile != "" {
		b, err := os.ReadFile(queryFile)
		if err != nil {
			return fmt.Errorf("failed to read query file: %w", err)
		}
		text = string(b)
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("one of --file or --aql is required")
	}
	db, err := parseDatabase(queryDB)
	if err != nil {
		return err
	}
	q, err := buildQuery(text, queryBind)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rows, err := graphdb.Execute(cmd.Context(), newConnector(cfg.Arango), q, db, endpoint, queryBatch)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, row := range rows {
		fmt.Fprintln(out, string(row))
	}
	return nil
}
