package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/MMMZZYz/aitest/internal/config"
	"github.com/MMMZZYz/aitest/internal/outline"
	"github.com/MMMZZYz/aitest/internal/pipeline"
	"github.com/MMMZZYz/aitest/internal/storage"
	"github.com/MMMZZYz/aitest/internal/xmind"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "aitest",
		Short: "Turn requirement documents into test-point mind maps and case spreadsheets",
	}
	configPath string

	outPath      string
	rootTitle    string
	tablesFlag   string
	templateFlag string
	purgeCache   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML configuration file")

	for _, cmd := range []*cobra.Command{analyzeCmd, outlineCmd, mindmapCmd, markdownCmd, casesCmd, modulesCmd} {
		cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output file (defaults to the run directory under output.dir)")
	}
	mindmapCmd.Flags().StringVar(&rootTitle, "title", "", "Root title used when the outline has no # heading")
	mindmapCmd.Flags().StringVar(&tablesFlag, "tables", "", "How tables become topics: joined, rows or grouped (overrides mindmap.tables)")
	casesCmd.Flags().StringVar(&templateFlag, "template", "", "Case template workbook (overrides cases.template)")
	cacheCmd.Flags().BoolVar(&purgeCache, "purge", false, "Delete cached cases of the configured model")

	rootCmd.AddCommand(analyzeCmd, outlineCmd, mindmapCmd, markdownCmd, pathsCmd, casesCmd, modulesCmd, runCmd, cacheCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// build wires the model-backed pipeline, aborting on configuration errors.
func build(ctx context.Context, cfg *config.Config) *pipeline.Components {
	comp, err := pipeline.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("Setup failed: %v\nCheck your %s and API keys.", err, configPath)
	}
	return comp
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// readRequirement extracts the requirement text of path, aborting when empty.
func readRequirement(ctx context.Context, comp *pipeline.Components, path string) string {
	fmt.Printf("📄 Reading requirement: %s\n", path)
	text, err := comp.Extractor.Extract(ctx, path)
	if err != nil {
		log.Fatalf("Failed to read requirement: %v", err)
	}
	if strings.TrimSpace(text) == "" {
		log.Fatalf("Requirement %s is empty", path)
	}
	return text
}

// outputFor returns -o when given, otherwise name inside the input's run directory.
func outputFor(comp *pipeline.Components, input, name string) string {
	if outPath != "" {
		return outPath
	}
	return filepath.Join(comp.Runner.RunDir(input), name)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <requirement>",
	Short: "Write a 5W1H analysis of a requirement document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		comp := build(ctx, loadConfig())
		defer comp.Close()

		text := readRequirement(ctx, comp, args[0])
		if err := comp.Runner.Analyze(ctx, text, outputFor(comp, args[0], pipeline.AnalysisFile)); err != nil {
			log.Fatalf("Analysis failed: %v", err)
		}
	},
}

var outlineCmd = &cobra.Command{
	Use:   "outline <requirement>",
	Short: "Generate the structured test-point outline as markdown",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		cfg := loadConfig()
		comp := build(ctx, cfg)
		defer comp.Close()

		text := readRequirement(ctx, comp, args[0])
		mdPath := outputFor(comp, args[0], pipeline.TestPointsFile)
		promptPath := ""
		if cfg.Output.SavePrompt {
			promptPath = filepath.Join(filepath.Dir(mdPath), pipeline.PromptFile)
		}
		doc, err := comp.Runner.TestPoints(ctx, text, filepath.Base(args[0]), mdPath, promptPath)
		if err != nil {
			log.Fatalf("Test point generation failed: %v", err)
		}
		fmt.Printf("📊 %d sections, %d test points\n", len(doc.Sections), doc.PointCount())
	},
}

var mindmapCmd = &cobra.Command{
	Use:   "mindmap <outline.md>",
	Short: "Convert a markdown outline into an .xmind archive",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		title := rootTitle
		if title == "" {
			title = cfg.MindMap.RootTitle
		}
		mode := cfg.MindMap.Tables
		if tablesFlag != "" {
			mode = tablesFlag
		}
		tables, err := outline.ParseTableMode(mode)
		if err != nil {
			log.Fatalf("Invalid table mode: %v", err)
		}
		dst := outPath
		if dst == "" {
			dst = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".xmind"
		}

		n, err := pipeline.MindMapFromMarkdown(args[0], dst, title, tables)
		if err != nil {
			log.Fatalf("Mind map conversion failed: %v", err)
		}
		fmt.Printf("🌳 %d topics written\n", n)
	},
}

var markdownCmd = &cobra.Command{
	Use:   "markdown <file.xmind>",
	Short: "Convert an .xmind archive back into a markdown outline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dst := outPath
		if dst == "" {
			dst = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".md"
		}
		n, err := pipeline.MarkdownFromMindMap(args[0], dst)
		if err != nil {
			log.Fatalf("Outline conversion failed: %v", err)
		}
		fmt.Printf("📝 %d topics rendered\n", n)
	},
}

var pathsCmd = &cobra.Command{
	Use:   "paths <file.xmind>",
	Short: "List every root-to-leaf path of a mind map",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read %s: %v", args[0], err)
		}
		leaves, err := xmind.LeafPathsFromArchive(data)
		if err != nil {
			log.Fatalf("Failed to extract leaf paths: %v", err)
		}
		for _, l := range leaves {
			fmt.Println(l.String())
		}
		fmt.Printf("✅ %d leaf paths\n", len(leaves))
	},
}

var casesCmd = &cobra.Command{
	Use:   "cases <file.xmind>",
	Short: "Generate test cases for every leaf path and write them to a spreadsheet",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		cfg := loadConfig()
		if templateFlag != "" {
			cfg.Cases.Template = templateFlag
		}
		comp := build(ctx, cfg)
		defer comp.Close()

		dst := outPath
		if dst == "" {
			dst = filepath.Join(filepath.Dir(args[0]), pipeline.CasesFile)
		}

		start := time.Now()
		res, err := comp.Runner.Cases(ctx, args[0], dst)
		if err != nil {
			log.Fatalf("Case generation failed: %v", err)
		}
		fmt.Printf("📊 %d leaf paths, %d cases (%d from cache) in %v\n",
			res.LeafPaths, res.Cases, res.CacheHits, time.Since(start).Round(time.Millisecond))
	},
}

var modulesCmd = &cobra.Command{
	Use:   "modules <requirement>",
	Short: "Generate six-dimension test points grouped by module for review",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		cfg := loadConfig()
		comp := build(ctx, cfg)
		defer comp.Close()

		text := readRequirement(ctx, comp, args[0])
		dst := outputFor(comp, args[0], "测试点评审.xmind")
		n, err := comp.Runner.Modules(ctx, text, cfg.MindMap.RootTitle, dst)
		if err != nil {
			log.Fatalf("Module review generation failed: %v", err)
		}
		fmt.Printf("📊 %d test points classified\n", n)
	},
}

var runCmd = &cobra.Command{
	Use:   "run <requirement>",
	Short: "Run analysis, test points, mind map and case generation in one go",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		comp := build(ctx, loadConfig())
		defer comp.Close()

		fmt.Println("🚀 Running pipeline...")
		start := time.Now()
		res, err := comp.Runner.Run(ctx, args[0])
		if err != nil {
			log.Fatalf("Pipeline failed: %v", err)
		}
		fmt.Printf("🎉 Done in %v. Report: %s\n", time.Since(start).Round(time.Millisecond), res.ReportPath)
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show or purge cached cases of the configured case model",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if cfg.Cases.Cache == "" {
			fmt.Println("ℹ️  Case cache is disabled (cases.cache is empty).")
			return
		}
		store, err := storage.NewSQLiteStore(cfg.Cases.Cache)
		if err != nil {
			log.Fatalf("Failed to open case cache: %v", err)
		}
		defer store.Close()

		ctx := context.Background()
		model := cfg.CasesModel()
		if purgeCache {
			n, err := store.Purge(ctx, model)
			if err != nil {
				log.Fatalf("Failed to purge cache: %v", err)
			}
			fmt.Printf("🧹 Removed %d cached leaf paths for %s\n", n, model)
			return
		}
		n, err := store.Count(ctx, model)
		if err != nil {
			log.Fatalf("Failed to read cache: %v", err)
		}
		fmt.Printf("💾 %s: %d cached leaf paths for %s\n", cfg.Cases.Cache, n, model)
	},
}
