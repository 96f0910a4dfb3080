// Why this file: ./cmd/hybridrag/main.go
// Entrypoint for the hybrid RAG decision fabric's CLI. Adapted from the
// teacher's cmd/main.go: same godotenv/step-logger/signal-handling
// bootstrap and interactive REPL shape, wired to internal/runtime.Runtime
// instead of the teacher's internal/app.CLIApplication + internal/mcp
// stack.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Rivega42/hybrid-rag-system/config"
	"github.com/Rivega42/hybrid-rag-system/display"
	"github.com/Rivega42/hybrid-rag-system/internal/agents"
	"github.com/Rivega42/hybrid-rag-system/internal/analyzer"
	"github.com/Rivega42/hybrid-rag-system/internal/cache"
	"github.com/Rivega42/hybrid-rag-system/internal/classifier"
	"github.com/Rivega42/hybrid-rag-system/internal/embedder"
	"github.com/Rivega42/hybrid-rag-system/internal/hybrid"
	"github.com/Rivega42/hybrid-rag-system/internal/llm"
	"github.com/Rivega42/hybrid-rag-system/internal/logger"
	"github.com/Rivega42/hybrid-rag-system/internal/metrics"
	"github.com/Rivega42/hybrid-rag-system/internal/pipeline"
	"github.com/Rivega42/hybrid-rag-system/internal/resource"
	"github.com/Rivega42/hybrid-rag-system/internal/retriever"
	"github.com/Rivega42/hybrid-rag-system/internal/router"
	"github.com/Rivega42/hybrid-rag-system/internal/runtime"
	"github.com/Rivega42/hybrid-rag-system/models"
	"github.com/Rivega42/hybrid-rag-system/storage"
)

var (
	version    = "1.0.0"
	buildTime  = "unknown"
	gitCommit  = "unknown"
	stepLogger *logger.StepLogger
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️ No .env file found, using system environment variables\n")
	} else {
		fmt.Printf("✅ Loaded environment variables from .env\n")
	}

	if err := os.MkdirAll("logs", 0755); err != nil {
		fmt.Printf("❌ Failed to create logs directory: %v\n", err)
		os.Exit(1)
	}

	sessionID := fmt.Sprintf("session_%d", time.Now().UnixNano())
	var err error
	stepLogger, err = logger.NewStepLogger(sessionID, "", "info", false, true)
	if err != nil {
		fmt.Printf("❌ Failed to create step logger: %v\n", err)
		os.Exit(1)
	}
	defer stepLogger.Close()

	console, err := logger.NewConsoleLogger()
	if err != nil {
		fmt.Printf("⚠️ Console file logging unavailable: %v\n", err)
	} else {
		defer console.Close()
		console.Log(fmt.Sprintf("session %s starting (version %s)", sessionID, version))
	}

	startStep := stepLogger.StartStep(logger.ComponentCLI, "Application Startup", map[string]interface{}{
		"version":    version,
		"build_time": buildTime,
		"git_commit": gitCommit,
		"pid":        os.Getpid(),
		"args":       os.Args,
	})

	configStep := stepLogger.StartStep(logger.ComponentCLI, "Loading Configuration", nil)
	cfg, err := config.Load()
	if err != nil {
		stepLogger.FailStep(configStep, err)
		fmt.Printf("❌ Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	stepLogger.CompleteStep(configStep, "Configuration loaded successfully")

	rtStep := stepLogger.StartStep(logger.ComponentCLI, "Wiring Runtime", nil)
	rt, err := buildRuntime(cfg)
	if err != nil {
		stepLogger.FailStep(rtStep, err)
		fmt.Printf("❌ Failed to wire runtime: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()
	stepLogger.CompleteStep(rtStep, "Runtime wired successfully")

	dbStep := stepLogger.StartStep(logger.ComponentCLI, "Opening Query Log Database", nil)
	db, err := storage.NewSQLiteDB(cfg.Database.Path)
	if err != nil {
		stepLogger.UpdateStep(dbStep, logger.StatusSkipped, fmt.Sprintf("query log disabled: %v", err), nil)
		fmt.Printf("⚠️ Query log database unavailable: %v\n", err)
	} else {
		defer db.Close()
		stepLogger.CompleteStep(dbStep, "Query log database ready")
	}

	welcomeStep := stepLogger.StartStep(logger.ComponentDisplay, "Displaying Welcome Message", nil)
	showWelcome()
	stepLogger.CompleteStep(welcomeStep, "Welcome message displayed")

	signalStep := stepLogger.StartStep(logger.ComponentCLI, "Setting up Signal Handling", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-signalCh
		stepLogger.LogInfo(logger.ComponentCLI, "Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
		fmt.Println("\n👋 Gracefully shutting down the hybrid RAG fabric...")
		cancel()
		time.Sleep(100 * time.Millisecond)
		os.Exit(0)
	}()
	stepLogger.CompleteStep(signalStep, "Signal handling configured")
	stepLogger.CompleteStep(startStep, "Application startup completed successfully")

	cliStep := stepLogger.StartStep(logger.ComponentCLI, "Starting Interactive CLI Loop", nil)
	if err := runInteractiveCLI(ctx, rt, db); err != nil {
		stepLogger.FailStep(cliStep, err)
		fmt.Printf("❌ CLI error: %v\n", err)
		os.Exit(1)
	}
	stepLogger.CompleteStep(cliStep, "CLI loop completed")
}

// buildRuntime constructs every fabric collaborator and wires them into a
// single Runtime, following the composition order the teacher's
// NewCLIApplicationWithLLM used for its own component graph.
func buildRuntime(cfg *config.Config) (*runtime.Runtime, error) {
	promMetrics := metrics.NewPrometheusSink(prometheus.NewRegistry())

	c := classifier.New(classifier.Thresholds{
		Simple:  cfg.Thresholds.ComplexitySimple,
		Complex: cfg.Thresholds.ComplexityComplex,
	}, nil)
	a := analyzer.New(c, "en", promMetrics)

	oracle := resource.New(resource.Config{})
	r := router.New(cfg.Thresholds.ComplexitySimple, cfg.Thresholds.ComplexityComplex, oracle)

	cacheMgr := cache.NewManager(cache.Config{
		EnableL1:    true,
		EnableL2:    cfg.Vector.Host != "",
		EnableL3:    true,
		L1MaxSize:   cfg.Cache.L1MaxSize,
		L1TTL:       time.Duration(cfg.Cache.L1TTL) * time.Second,
		L2Threshold: cfg.Cache.L2SimilarityThreshold,
		L2MaxSize:   cfg.Cache.L2MaxSize,
		L2TTL:       time.Duration(cfg.Cache.L2TTL) * time.Second,
		L3MaxSize:   cfg.Cache.L3MaxPaths,
		L3TTL:       time.Duration(cfg.Cache.L3TTL) * time.Second,
		RedisAddr:   cfg.Cache.RedisAddr,
		RedisTTL:    time.Duration(cfg.Cache.RedisTTL) * time.Second,
	}, promMetrics)

	closers := []func() error{cacheMgr.Close}

	// embIface stays a true nil interface (not a typed-nil *OpenAIEmbedder)
	// when construction fails, so runtime.Runtime's `embedder == nil` check
	// behaves correctly.
	var embIface embedder.Embedder
	ret := retriever.Retriever(retriever.NullRetriever{})

	emb, err := embedder.New(embedder.Config{APIKey: cfg.AI.OpenAI.APIKey})
	if err != nil {
		fmt.Printf("⚠️ Embedder not available: %v (semantic cache and vector retrieval disabled)\n", err)
	} else {
		embIface = emb
		qdrant, err := retriever.New(retriever.Config{
			Address:    fmt.Sprintf("%s:%d", cfg.Vector.Host, cfg.Vector.Port),
			Collection: cfg.Vector.CollectionName,
		}, emb)
		if err != nil {
			fmt.Printf("⚠️ Retriever not available: %v (classic/research paths run without grounding)\n", err)
		} else {
			ret = qdrant
			closers = append(closers, qdrant.Close)
		}
	}

	completer, err := llm.New(llm.Config{
		APIKey:      cfg.AI.OpenAI.APIKey,
		Model:       cfg.AI.OpenAI.Model,
		MaxTokens:   cfg.AI.OpenAI.MaxTokens,
		Temperature: cfg.AI.OpenAI.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("llm completer: %w", err)
	}

	classic := pipeline.New(ret, completer, 5)

	workers := map[models.AgentRole]agents.Worker{
		models.AgentResearch:     agents.NewLLMWorker(models.AgentResearch, "research-1", completer, ret),
		models.AgentAnalysis:     agents.NewLLMWorker(models.AgentAnalysis, "analysis-1", completer, nil),
		models.AgentSynthesis:    agents.NewLLMWorker(models.AgentSynthesis, "synthesis-1", completer, nil),
		models.AgentVerification: agents.NewLLMWorker(models.AgentVerification, "verification-1", completer, nil),
	}
	orchestratorMode := agents.SchedulingSequential
	if cfg.Agents.ParallelAgents {
		orchestratorMode = agents.SchedulingParallel
	}
	orchestrator := agents.New(workers, completer, agents.Config{
		Mode:                orchestratorMode,
		MaxIterations:       cfg.Thresholds.MaxIterationsAgent,
		ConfidenceThreshold: cfg.Agents.ConfidenceThreshold,
	})

	hybridCoordinator := hybrid.New(classic, orchestrator)

	rt := runtime.New(a, r, cacheMgr, classic, orchestrator, hybridCoordinator, embIface, promMetrics,
		runtime.Config{Timeout: cfg.Timeout()}, closers...)
	return rt, nil
}

func runInteractiveCLI(ctx context.Context, rt *runtime.Runtime, db *storage.SQLiteDB) error {
	reader := bufio.NewReader(os.Stdin)
	promptColor := color.New(color.FgCyan, color.Bold)
	renderer := display.NewDisplayRenderer(display.DisplayConfig{
		ShowProgress:     true,
		StreamingEnabled: false,
		MaxWidth:         120,
		EnableBorders:    false,
		EnableIcons:      true,
	})

	stepLogger.LogInfo(logger.ComponentCLI, "Interactive CLI loop started", nil)

	fmt.Printf("💡 Try:\n")
	fmt.Printf("  • 'what caching tiers does the fabric use' - simple/classic path\n")
	fmt.Printf("  • 'проанализируй стратегии маршрутизации' - agentic path\n")
	fmt.Printf("  • 'quit' or 'exit' to leave\n\n")

	for {
		select {
		case <-ctx.Done():
			stepLogger.LogInfo(logger.ComponentCLI, "CLI loop terminated by context", nil)
			return nil
		default:
			promptColor.Printf("hybridrag> ")

			input, err := reader.ReadString('\n')
			if err != nil {
				if err.Error() == "EOF" {
					fmt.Println("\n👋 Goodbye!")
					return nil
				}
				return err
			}

			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			if input == "quit" || input == "exit" || input == "q" {
				fmt.Println("👋 Goodbye!")
				return nil
			}

			queryID := fmt.Sprintf("query_%d", time.Now().UnixNano())
			stepLogger.LogInfo(logger.ComponentCLI, "Processing new query", map[string]interface{}{
				"query_id": queryID,
				"input":    input,
			})

			tracer, err := logger.NewExecutionTracer(queryID)
			if err == nil {
				tracer.LogStep("ROUTING", "dispatching to runtime.Query")
			}

			result := rt.Query(ctx, input, nil, nil, nil)

			if tracer != nil {
				tracer.LogEnd(string(result.StrategyUsed))
				tracer.Close()
			}
			if db != nil {
				if err := db.LogQuery(input, result); err != nil {
					stepLogger.LogError(logger.ComponentCLI, "Failed to persist query log", err)
				}
			}

			renderer.RenderResponse(result)
		}
	}
}

func showWelcome() {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow)

	fmt.Println()
	cyan.Println("Hybrid RAG decision fabric")
	commitHash := gitCommit
	if len(gitCommit) > 8 {
		commitHash = gitCommit[:8]
	}
	fmt.Printf("Version: %s | Build: %s | Commit: %s\n", version, buildTime, commitHash)
	fmt.Println(strings.Repeat("─", 50))

	yellow.Println("Routes every query to the cheapest strategy that can answer it")
	fmt.Println("• Classic, agentic, or hybrid execution chosen by the router")
	fmt.Println("• Three-tier cache (exact, semantic, path) ahead of every strategy")
	fmt.Println("• Confidence-scored hybrid fallback when one path fails")
	fmt.Println(strings.Repeat("─", 50))
	fmt.Println()
}
