package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazalci/textcompare"
	"github.com/hazalci/textcompare/pkg/model"
	"github.com/hazalci/textcompare/pkg/store"
)

var (
	manifestPath string
	modelName    string
	dbPath       string
	threshold    float64
	lexWeight    float64
	rawScores    bool
	outputJSON   bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "textcompare",
	Short: "Semantic text comparison",
	Long:  `Compare texts by meaning using pretrained word-vector language models.`,
}

var compareCmd = &cobra.Command{
	Use:   "compare <source> <target>",
	Short: "Compare two texts and print their similarity score",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmp, st, err := buildComparer()
		if err != nil {
			return err
		}
		defer closeStore(st)

		res, err := cmp.CompareDetailed(context.Background(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("comparison failed: %w", err)
		}

		if outputJSON {
			data, _ := json.MarshalIndent(res, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		fmt.Printf("%.4f\n", res.Score)
		return nil
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Compare tab-separated text pairs from a file",
	Long:  `Reads one pair per line, source and target separated by a tab, and prints one score per line.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, err := readPairs(args[0])
		if err != nil {
			return err
		}
		if len(pairs) == 0 {
			return fmt.Errorf("no pairs found in %s", args[0])
		}

		cmp, st, err := buildComparer()
		if err != nil {
			return err
		}
		defer closeStore(st)

		scores, err := cmp.ComparePairs(context.Background(), pairs)
		if err != nil {
			return fmt.Errorf("batch comparison failed: %w", err)
		}

		if outputJSON {
			type row struct {
				Source string  `json:"source"`
				Target string  `json:"target"`
				Score  float64 `json:"score"`
			}
			rows := make([]row, len(pairs))
			for i, p := range pairs {
				rows[i] = row{Source: p.Source, Target: p.Target, Score: scores[i]}
			}
			data, _ := json.MarshalIndent(rows, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		for i, score := range scores {
			fmt.Printf("%.4f\t%s\t%s\n", score, pairs[i].Source, pairs[i].Target)
		}
		return nil
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage language models",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List models declared in the manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		if manifestPath == "" {
			return fmt.Errorf("--models manifest is required")
		}
		m, err := model.LoadManifest(manifestPath)
		if err != nil {
			return err
		}

		if outputJSON {
			data, _ := json.MarshalIndent(m, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		for _, info := range m.Models {
			marker := " "
			if info.Name == m.Default {
				marker = "*"
			}
			fmt.Printf("%s %s\t%s\n", marker, info.Name, info.Path)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent comparisons from the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(st)

		recent, err := st.Recent(context.Background(), limit)
		if err != nil {
			return err
		}

		if outputJSON {
			data, _ := json.MarshalIndent(recent, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		for _, c := range recent {
			fmt.Printf("%s\t%.4f\t%s\t%s\n",
				c.CreatedAt.Format("2006-01-02 15:04:05"), c.Score, c.Source, c.Target)
		}
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the embedding cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(st)

		stats, err := st.Stats(context.Background())
		if err != nil {
			return err
		}

		if outputJSON {
			data, _ := json.MarshalIndent(stats, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		fmt.Printf("Vectors:     %d\n", stats.Vectors)
		fmt.Printf("Comparisons: %d\n", stats.Comparisons)
		fmt.Printf("Size:        %d bytes\n", stats.Size)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached vectors and history",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(st)

		if err := st.Clear(context.Background()); err != nil {
			return err
		}
		fmt.Println("Cache cleared")
		return nil
	},
}

// buildComparer assembles a comparer from the global flags.
func buildComparer() (*textcompare.Comparer, *store.Store, error) {
	opts := []textcompare.Option{
		textcompare.WithThreshold(threshold),
		textcompare.WithLexicalWeight(lexWeight),
		textcompare.WithClamp(!rawScores),
	}
	if verbose {
		opts = append(opts, textcompare.WithLogger(textcompare.NewStdLogger(textcompare.LevelDebug)))
	}

	if manifestPath == "" {
		return nil, nil, fmt.Errorf("--models manifest is required")
	}
	reg, err := model.OpenRegistry(manifestPath)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, textcompare.WithRegistry(reg), textcompare.WithModel(modelName))

	var st *store.Store
	if dbPath != "" {
		st, err = openStore()
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, textcompare.WithStore(st))
	}

	cmp, err := textcompare.New(opts...)
	if err != nil {
		closeStore(st)
		return nil, nil, err
	}
	return cmp, st, nil
}

func openStore() (*store.Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("--db path is required")
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := st.Init(context.Background()); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if st != nil {
		_ = st.Close()
	}
}

// readPairs parses a TSV file of source/target pairs. Blank lines and
// lines starting with # are skipped.
func readPairs(path string) ([]textcompare.Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pairs file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var pairs []textcompare.Pair
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		parts := strings.SplitN(text, "\t", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: expected source<TAB>target", line)
		}
		pairs = append(pairs, textcompare.Pair{Source: parts[0], Target: parts[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pairs file: %w", err)
	}
	return pairs, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&manifestPath, "models", "", "path to the model manifest (YAML)")
	rootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "model name (default: manifest default)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the embedding cache database")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	for _, cmd := range []*cobra.Command{compareCmd, batchCmd} {
		cmd.Flags().Float64Var(&threshold, "threshold", textcompare.DefaultThreshold, "pass threshold")
		cmd.Flags().Float64Var(&lexWeight, "lexical-weight", 0, "weight of the lexical score in [0, 1]")
		cmd.Flags().BoolVar(&rawScores, "raw", false, "report raw similarity without clamping to [0, 1]")
	}

	historyCmd.Flags().Int("limit", 20, "number of comparisons to show")

	modelsCmd.AddCommand(modelsListCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(compareCmd, batchCmd, modelsCmd, historyCmd, cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
