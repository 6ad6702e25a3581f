package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"employee-review/internal/domain"
	"employee-review/internal/llm"
	"employee-review/internal/repository"
	"employee-review/internal/service"
	"employee-review/internal/weight"
)

const (
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

// checkConfig es el subconjunto de configuración que usa el harness: no necesita Postgres.
type checkConfig struct {
	LLMEndpoint     string        `env:"LLM_ENDPOINT" envDefault:"https://vk-scoreworker-case.olymp.innopolis.university/generate"`
	LLMSystemPrompt string        `env:"LLM_SYSTEM_PROMPT" envDefault:"You are a helpful assistant."`
	LLMMaxTokens    int           `env:"LLM_MAX_TOKENS" envDefault:"2000"`
	LLMTemperature  float64       `env:"LLM_TEMPERATURE" envDefault:"0.3"`
	LLMTimeout      time.Duration `env:"LLM_TIMEOUT" envDefault:"2m"`
	MaxPromptLength int           `env:"MAX_PROMPT_LENGTH" envDefault:"20000"`
}

var defaultAspects = []string{
	"Профессионализм",
	"Коммуникация",
	"Командная работа",
	"Инициативность",
}

// summary_check carga reseñas de un archivo JSON en memoria y corre el pipeline
// completo contra el endpoint configurado.
func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	input := flag.String("input", "", "JSON file with [{ID_reviewer, ID_under_review, review}]")
	employeeID := flag.Int64("employee", 0, "employee id to summarize")
	aspectList := flag.String("aspects", strings.Join(defaultAspects, ","), "comma separated aspects")
	dryRun := flag.Bool("dry-run", false, "print the batch prompts without calling the LLM")
	flag.Parse()

	if *input == "" || *employeeID == 0 {
		fmt.Fprintln(os.Stderr, "usage: summary_check -input reviews.json -employee <id>")
		os.Exit(2)
	}

	var cfg checkConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	raw, err := os.ReadFile(*input)
	if err != nil {
		log.Fatal(err)
	}
	var inputs []service.FeedbackInput
	if err := json.Unmarshal(raw, &inputs); err != nil {
		log.Fatalf("decode %s: %v", *input, err)
	}

	store := repository.NewMemoryStore()
	for _, text := range parseAspectList(*aspectList) {
		if _, err := store.Aspects().Create(ctx, text); err != nil {
			log.Fatal(err)
		}
	}

	feedbackSvc := service.NewFeedbackService(store.Employees(), store.Reviewers(), store.Feedback(), weight.NewEngine(nil, nil), logger)
	created, err := feedbackSvc.CreateBatch(ctx, inputs)
	if err != nil {
		log.Fatalf("load feedback: %v", err)
	}
	fmt.Printf("%s[Loaded]%s %d feedback records\n", colorCyan, colorReset, len(created))

	records, err := feedbackSvc.ListByEmployee(ctx, *employeeID)
	if err != nil {
		log.Fatalf("employee %d: %v", *employeeID, err)
	}
	for _, fb := range records {
		fmt.Printf("  reviewer=%d weight=%.4f self=%t\n", fb.ReviewerID, fb.Weight, fb.IsSelfReview)
	}

	if *dryRun {
		aspects, _ := store.Aspects().List(ctx)
		items := make([]domain.WeightedText, 0, len(records))
		for _, fb := range records {
			items = append(items, domain.WeightedText{Text: fb.Text, Weight: fb.Weight})
		}
		for i, p := range service.BuildPrompts(aspects, items, cfg.MaxPromptLength) {
			fmt.Printf("%s[Prompt %d]%s %d chars\n%s\n\n", colorCyan, i+1, colorReset, len([]rune(p)), p)
		}
		return
	}

	opts := llm.DefaultOptions()
	opts.SystemPrompt = cfg.LLMSystemPrompt
	opts.MaxTokens = cfg.LLMMaxTokens
	opts.Temperature = cfg.LLMTemperature
	llmClient := llm.NewHTTPClient(cfg.LLMEndpoint, opts, &http.Client{Timeout: cfg.LLMTimeout}, logger)

	summarySvc := service.NewSummaryService(llmClient, store.Employees(), store.Aspects(), store.Feedback(), store.Summaries(), service.NewLocalRunLocker(), cfg.MaxPromptLength, logger)
	start := time.Now()
	res, err := summarySvc.RunSummary(ctx, *employeeID)
	if err != nil {
		stage, _ := service.StageOf(err)
		log.Fatalf("summary failed at %s: %v", stage, err)
	}

	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Printf("%s[Summary]%s %d batches in %s\n%s\n", colorGreen, colorReset, res.Batches, time.Since(start).Round(time.Millisecond), out)
}
