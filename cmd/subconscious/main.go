package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hoxofp/subconscious/internal/subconscious/config"
	"github.com/hoxofp/subconscious/internal/subconscious/episodic"
	"github.com/hoxofp/subconscious/internal/subconscious/graph"
	"github.com/hoxofp/subconscious/internal/subconscious/llm"
	"github.com/hoxofp/subconscious/internal/subconscious/memory"
	"github.com/hoxofp/subconscious/internal/subconscious/mind"
	"github.com/hoxofp/subconscious/internal/subconscious/procedural"
	"github.com/hoxofp/subconscious/internal/subconscious/semantic"
	"github.com/hoxofp/subconscious/internal/subconscious/working"
)

const version = "0.1.0-alpha"

func main() {
	logger := log.New(os.Stderr, "subconscious: ", log.LstdFlags)
	printBanner()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down...")
		cancel()
		os.Exit(0)
	}()

	cfg := config.FromEnv()
	paths := cfg.Layout()
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Fatalf("create data dir: %v", err)
	}

	m, err := buildMind(ctx, cfg, paths)
	if err != nil {
		logger.Fatalf("initialize: %v", err)
	}

	fmt.Printf("✓ Data dir: %s | Model: %s\n\n", cfg.DataDir, cfg.DefaultModel)
	fmt.Println("Type a message to think. Commands: /learn /recall /imagine /dream /stats /reset /help /exit")
	fmt.Println()

	m.StartDreaming()
	defer m.StopDreaming()
	m.StartConsolidating()
	defer m.StopConsolidating()

	repl(ctx, m, logger)
}

func buildMind(ctx context.Context, cfg *config.Settings, paths config.Paths) (*mind.Mind, error) {
	w := working.New(cfg.WorkingMemoryCapacity)

	ep, err := episodic.Open(paths.EpisodicDB)
	if err != nil {
		return nil, fmt.Errorf("open episodic store: %w", err)
	}

	embedder := semantic.NewHashEmbedding(0)
	se, err := semantic.Open(ctx, semantic.Config{Addr: "localhost:6379"}, embedder)
	if err != nil {
		return nil, fmt.Errorf("open semantic store: %w", err)
	}

	pr, err := procedural.Open(paths.ProceduralDB)
	if err != nil {
		return nil, fmt.Errorf("open procedural store: %w", err)
	}

	manager := memory.New(w, ep, se, pr)
	g := graph.Load(paths.GraphFile, cfg.SpreadFactor, 0)

	provider := llm.NewOllamaProvider(llm.Config{BaseURL: cfg.ProviderBaseURL, Model: cfg.DefaultModel})

	return mind.New(cfg, manager, g, provider, paths.GraphFile), nil
}

func repl(ctx context.Context, m *mind.Mind, logger *log.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if handleCommand(ctx, m, input, logger) {
				return
			}
			continue
		}

		result := m.Think(ctx, input, true, 1)
		fmt.Printf("\nSubconscious: %s\n", result.Response)
		for _, insight := range result.Insights {
			fmt.Printf("  insight: %s\n", insight.Content)
		}
		for _, spark := range result.CreativeSparks {
			fmt.Printf("  spark (%s): %s\n", spark.Strategy, spark.Idea)
		}
		fmt.Println()
	}
}

func handleCommand(ctx context.Context, m *mind.Mind, cmd string, logger *log.Logger) (exit bool) {
	fields := strings.Fields(cmd)
	rest := strings.TrimSpace(strings.TrimPrefix(cmd, fields[0]))

	switch fields[0] {
	case "/help":
		fmt.Println("\n/learn <content>   store content as a semantic memory")
		fmt.Println("/recall <query>    search across all memory layers")
		fmt.Println("/imagine <a> | <b> produce a creative spark bridging two concepts")
		fmt.Println("/dream             run one consolidation cycle now")
		fmt.Println("/stats             show memory and graph counts")
		fmt.Println("/reset             clear working memory")
		fmt.Println("/exit              quit")
		fmt.Println()
	case "/learn":
		if rest == "" {
			fmt.Println("usage: /learn <content>")
			return false
		}
		if _, err := m.Learn(ctx, rest, "", 0.7, nil); err != nil {
			fmt.Printf("error: %v\n\n", err)
			return false
		}
		fmt.Println("✓ learned\n")
	case "/recall":
		if rest == "" {
			fmt.Println("usage: /recall <query>")
			return false
		}
		for _, r := range m.Recall(ctx, rest, 5, "") {
			fmt.Printf("  [%s] %s\n", r.Layer, truncate(r.Content, 80))
		}
		fmt.Println()
	case "/imagine":
		a, b, ok := strings.Cut(rest, "|")
		if !ok {
			fmt.Println("usage: /imagine <concept a> | <concept b>")
			return false
		}
		for _, s := range m.Imagine(ctx, strings.TrimSpace(a), strings.TrimSpace(b), 3) {
			fmt.Printf("  (%s) %s\n", s.Strategy, s.Idea)
		}
		fmt.Println()
	case "/dream":
		report := m.Dream(ctx)
		fmt.Printf("✓ consolidated %d, pruned %d, %d new connections, %d clusters\n\n",
			report.MemoriesConsolidated, report.MemoriesPruned, report.NewConnections, report.PatternsFound)
	case "/stats":
		stats, err := m.Stats(ctx)
		if err != nil {
			fmt.Printf("error: %v\n\n", err)
			return false
		}
		fmt.Printf("working=%d/%d episodic=%d semantic=%d procedural=%d nodes=%d edges=%d\n\n",
			stats.Memory.WorkingSize, stats.Memory.WorkingCapacity, stats.Memory.EpisodicCount,
			stats.Memory.SemanticCount, stats.Memory.ProceduralCount, stats.Graph.NodeCount, stats.Graph.EdgeCount)
	case "/reset":
		m.Reset()
		fmt.Println("✓ working memory cleared\n")
	case "/exit", "/quit":
		fmt.Println("Goodbye!")
		return true
	default:
		fmt.Printf("unknown command: %s\n\n", fields[0])
	}
	return false
}

func printBanner() {
	fmt.Printf(`
╔═════════════════════════════════════════════════════════╗
║        Subconscious Cognitive Middleware %s             ║
╚═════════════════════════════════════════════════════════╝

`, version)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
