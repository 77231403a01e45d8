package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MMMZZYz/aitest/internal/config"
	"github.com/MMMZZYz/aitest/internal/pipeline"
)

// One-shot runner: go run . [inputs/需求.md]
// Without an argument it lists inputs/ and asks which document to process.
func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig(config.DefaultPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Pick the requirement document
	var input string
	if len(os.Args) > 1 {
		input = os.Args[1]
		if _, err := os.Stat(input); err != nil {
			log.Fatalf("Input not found: %s", input)
		}
	} else {
		input = selectInput()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// 3. Initialize Components
	comp, err := pipeline.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("Setup failed: %v", err)
	}
	defer comp.Close()

	// 4. Run
	fmt.Printf("🚀 Processing %s...\n", input)
	res, err := comp.Runner.Run(ctx, input)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}
	fmt.Printf("📊 %d leaf paths, %d cases. Report: %s\n", res.Cases.LeafPaths, res.Cases.Cases, res.ReportPath)
}

func selectInput() string {
	files, err := pipeline.ListInputs(pipeline.InputDir)
	if err != nil {
		log.Fatalf("Failed to list %s: %v", pipeline.InputDir, err)
	}
	switch len(files) {
	case 0:
		log.Fatalf("No requirement document found in %s/", pipeline.InputDir)
	case 1:
		fmt.Printf("📄 Found 1 requirement document: %s\n", filepath.Base(files[0]))
		return files[0]
	}

	fmt.Println("Select a requirement document:")
	for i, f := range files {
		fmt.Printf("  %d. %s\n", i+1, filepath.Base(f))
	}
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("Enter a number (1-%d): ", len(files))
		if !in.Scan() {
			log.Fatal("No selection made")
		}
		n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err == nil && n >= 1 && n <= len(files) {
			return files[n-1]
		}
		fmt.Println("Invalid selection, try again.")
	}
}
