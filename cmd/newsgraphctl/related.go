package main

import (
	"encoding/json"

	"newsgraph/aql"
	"newsgraph/config"
	"newsgraph/retrieval"
	"newsgraph/types"

	"github.com/spf13/cobra"
)

var (
	relatedFull      bool
	relatedDepth     string
	relatedEdge      string
	relatedThreshold float64
)

var relatedCmd = &cobra.Command{
	Use:   "related <article-key>",
	Short: "Print articles related to an article by similarity",
	Long: `Print the articles reached from <article-key> through a similarity edge
collection whose similarity value is below the threshold.

Examples:
  newsgraphctl related A1
  newsgraphctl related A1 --full --depth 1..3 --edge lr --threshold 0.3`,
	Args: cobra.ExactArgs(1),
	RunE: runRelated,
}

func init() {
	rootCmd.AddCommand(relatedCmd)

	relatedCmd.Flags().BoolVar(&relatedFull, "full", false, "Return whole records with all source tags")
	relatedCmd.Flags().StringVarP(&relatedDepth, "depth", "d", config.DefaultDepth, "Traversal depth range, e.g. 1..2")
	relatedCmd.Flags().StringVar(&relatedEdge, "edge", config.DefaultEdgeCollection, "Similarity edge collection")
	relatedCmd.Flags().Float64VarP(&relatedThreshold, "threshold", "t", config.DefaultSimilarityThreshold, "Similarity threshold")
}

func runRelated(cmd *cobra.Command, args []string) error {
	depth, err := aql.ParseDepth(relatedDepth)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	r := retrieval.NewRetriever(newConnector(cfg.Arango), cfg.Arango)
	req := retrieval.SimilarityRequest{
		ArticleKey:     args[0],
		Depth:          depth,
		EdgeCollection: relatedEdge,
		Threshold:      relatedThreshold,
		Endpoint:       endpoint,
	}

	var recs []types.RelatedArticle
	if relatedFull {
		recs, err = r.RelatedBySimilarityFull(cmd.Context(), req)
	} else {
		recs, err = r.RelatedBySimilarity(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}
