package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"callflow/agent/agents/orchestrator"
	"callflow/agent/contract"
	"callflow/agent/domain"
	"callflow/agent/llm"
	"callflow/agent/preload"
	"callflow/agent/rag"
	"callflow/agent/report"
	"callflow/handler"
	"callflow/pkg/azureopenai"
	configx "callflow/pkg/config"
	_ "callflow/pkg/logger/autoload"
	"callflow/pkg/qdrant"
	"callflow/pkg/quote"
)

type AppConfig struct {
	Addr   string `envconfig:"ADDR" split_words:"true" default:":8080"`
	Domain string `envconfig:"DOMAIN" split_words:"true" default:"insurance"`

	DefaultLanguage string `envconfig:"DEFAULT_LANGUAGE" split_words:"true" default:"English"`

	EnableRAG     bool `envconfig:"ENABLE_RAG" split_words:"true" default:"true"`
	EnablePreload bool `envconfig:"ENABLE_PRELOAD" split_words:"true" default:"true"`
	EnableReports bool `envconfig:"ENABLE_REPORTS" split_words:"true" default:"false"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("APP")
	llmCfg := configx.MustNew[llm.Config]("AZURE_OPENAI")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid model configuration")
	}

	dom, err := domain.ByName(appCfg.Domain)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid domain configuration")
	}

	responder := buildResponder(ctx, llmCfg, llm.TaskTurn)

	opts := []orchestrator.Option{
		orchestrator.WithSummaryResponder(buildResponder(ctx, llmCfg, llm.TaskSummary)),
		orchestrator.WithDefaultLanguage(appCfg.DefaultLanguage),
	}
	if appCfg.EnableRAG && dom.RAGEnabled {
		opts = append(opts, orchestrator.WithRetrievalGate(buildGate(llmCfg)))
	}
	if appCfg.EnablePreload && dom.PreloadEnabled {
		opts = append(opts, orchestrator.WithPreloader(buildPreloader(ctx, llmCfg)))
	}
	if appCfg.EnableReports {
		opts = append(opts, orchestrator.WithReportSink(buildReportSink(ctx)))
	}

	orch, err := orchestrator.New(ctx, dom, responder, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("orchestrator initialization failed")
	}

	mux := http.NewServeMux()
	handler.New(orch).Register(mux)

	log.Info().Str("addr", appCfg.Addr).Str("domain", dom.Name).Msg("call agent listening")
	if err := http.ListenAndServe(appCfg.Addr, mux); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}

func buildResponder(ctx context.Context, cfg *llm.Config, task llm.Task) contract.Responder {
	azureCfg := cfg.AzureFor(task)
	model, err := azureCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("task", string(task)).Msg("chat model initialization failed")
	}
	responder, err := llm.NewResponder(model)
	if err != nil {
		log.Fatal().Err(err).Str("task", string(task)).Msg("responder initialization failed")
	}
	return responder
}

func buildGate(cfg *llm.Config) *rag.Gate {
	qdrantCfg := configx.MustNew[qdrant.Config]("QDRANT")
	store, err := qdrant.NewClient(*qdrantCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("qdrant client initialization failed")
	}

	embedder, err := azureopenai.NewEmbeddingClient(cfg.AzureFor(llm.TaskTurn))
	if err != nil {
		log.Fatal().Err(err).Msg("embedding client initialization failed")
	}

	retriever, err := rag.NewQdrantRetriever(embedder, store)
	if err != nil {
		log.Fatal().Err(err).Msg("retriever initialization failed")
	}
	return rag.NewGate(retriever)
}

func buildPreloader(ctx context.Context, cfg *llm.Config) *preload.Loader {
	quoteCfg := configx.MustNew[quote.Config]("QUOTE")
	source, err := quote.NewClient(*quoteCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("quote client initialization failed")
	}

	loader := preload.NewLoader(source, buildResponder(ctx, cfg, llm.TaskQuote))
	loader.Start(ctx)
	return loader
}

func buildReportSink(ctx context.Context) contract.ReportSink {
	reportCfg := configx.MustNew[report.Config]("REPORT")
	store, err := report.NewPostgresStore(*reportCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("report store initialization failed")
	}
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("report schema migration failed")
	}
	return store
}
