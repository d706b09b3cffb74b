package main

import (
	"context"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bububa/instructor-go/pkg/instructor"
	cohereClient "github.com/cohere-ai/cohere-go/v2/client"
	cohereOption "github.com/cohere-ai/cohere-go/v2/option"
	gemini "github.com/google/generative-ai-go/genai"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	milvusClient "github.com/milvus-io/milvus-sdk-go/v2/client"
	chromemgo "github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/krishidhan/sahayak/agents"
	"github.com/krishidhan/sahayak/components"
	"github.com/krishidhan/sahayak/components/embedder"
	"github.com/krishidhan/sahayak/components/embedder/providers"
	"github.com/krishidhan/sahayak/components/fallback"
	"github.com/krishidhan/sahayak/components/fpo"
	"github.com/krishidhan/sahayak/components/places"
	"github.com/krishidhan/sahayak/components/retriever"
	"github.com/krishidhan/sahayak/components/vectordb"
	"github.com/krishidhan/sahayak/components/vectordb/engines"
	"github.com/krishidhan/sahayak/components/weather"
	"github.com/krishidhan/sahayak/config"
	"github.com/krishidhan/sahayak/tools"
	advisorytool "github.com/krishidhan/sahayak/tools/advisory"
	fpotool "github.com/krishidhan/sahayak/tools/fpo"
	placestool "github.com/krishidhan/sahayak/tools/places"
	schemestool "github.com/krishidhan/sahayak/tools/schemes"
	weathertool "github.com/krishidhan/sahayak/tools/weather"
)

// buildOrchestrator assembles the full assistant: every tool the
// configuration has credentials for, the conversation session, and the
// phrasing composer. Tools whose providers lack keys are simply not
// registered; the FPO directory is always available because its dataset
// is bundled.
func buildOrchestrator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*agents.Orchestrator, error) {
	registry := tools.NewRegistry()
	var registered []tools.Tool

	if provs := weather.Providers(cfg.Weather.OpenWeatherKey, cfg.Weather.VisualCrossingKey); len(provs) > 0 {
		chainOpts := []fallback.Option{
			fallback.WithLogger(logger.With().Str("component", "weather").Logger()),
		}
		if cfg.Weather.TimeoutSeconds > 0 {
			chainOpts = append(chainOpts, fallback.WithTimeout(time.Duration(cfg.Weather.TimeoutSeconds)*time.Second))
		}
		svc := weather.NewService(provs, chainOpts...)
		registered = append(registered, weathertool.New(svc))
	}

	placesSvc, searchable := buildPlaces(cfg, logger)
	if searchable {
		registered = append(registered, placestool.New(placesSvc))
	}

	entries, err := loadFPOEntries(ctx, cfg)
	if err != nil {
		return nil, err
	}
	registered = append(registered, fpotool.New(
		fpo.NewRegistry(entries...),
		fpotool.WithLimit(cfg.FPO.MaxResults),
	))

	retrievalTools, err := buildRetrieval(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	registered = append(registered, retrievalTools...)

	if err := registry.Register(registered...); err != nil {
		return nil, err
	}

	opts := []agents.OrchestratorOption{
		agents.WithSession(components.NewSession(cfg.Session.TurnHistory)),
		agents.WithLogger(logger.With().Str("component", "orchestrator").Logger()),
	}
	if placesSvc != nil {
		opts = append(opts, agents.WithGeocoder(placesSvc))
	}
	composer, err := buildComposer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if composer != nil {
		opts = append(opts, agents.WithComposer(composer))
	}

	return agents.NewOrchestrator(registry, opts...)
}

// buildPlaces wires the geocode and POI-search chains. Geoapify serves
// both; the OpenWeatherMap geo endpoint seconds geocoding and Foursquare
// seconds the POI search. The bool reports whether any search provider
// exists, i.e. whether the places tool can work.
func buildPlaces(cfg *config.Config, logger zerolog.Logger) (*places.Service, bool) {
	var geocoders []places.GeocodeProvider
	var searchers []places.SearchProvider

	if cfg.Places.GeoapifyKey != "" {
		g := places.NewGeoapify(cfg.Places.GeoapifyKey)
		geocoders = append(geocoders, fallback.ProviderFunc(places.SourceGeoapify, g.Geocode))
		searchers = append(searchers, fallback.ProviderFunc(places.SourceGeoapify, g.SearchNearby))
	}
	if cfg.Weather.OpenWeatherKey != "" {
		c := weather.NewOpenWeatherMap(cfg.Weather.OpenWeatherKey)
		geocoders = append(geocoders, fallback.ProviderFunc(weather.SourceOpenWeatherMap, c.Geocode))
	}
	if cfg.Places.FoursquareKey != "" {
		f := places.NewFoursquare(cfg.Places.FoursquareKey)
		searchers = append(searchers, fallback.ProviderFunc(places.SourceFoursquare, f.SearchNearby))
	}
	if len(geocoders) == 0 && len(searchers) == 0 {
		return nil, false
	}

	opts := []places.ServiceOption{
		places.WithLogger(logger.With().Str("component", "places").Logger()),
	}
	if cfg.Places.CacheTTLSeconds > 0 {
		opts = append(opts, places.WithCache(places.DefaultCacheSize, time.Duration(cfg.Places.CacheTTLSeconds)*time.Second))
	}
	if cfg.Places.RateLimitCalls > 0 && cfg.Places.RateWindowSeconds > 0 {
		opts = append(opts, places.WithRateLimit(cfg.Places.RateLimitCalls, time.Duration(cfg.Places.RateWindowSeconds)*time.Second))
	}
	if cfg.Places.TimeoutSeconds > 0 {
		opts = append(opts, places.WithAttemptTimeout(time.Duration(cfg.Places.TimeoutSeconds)*time.Second))
	}
	return places.NewService(geocoders, searchers, opts...), len(searchers) > 0
}

// loadFPOEntries loads the organization directory from the configured
// source. With none configured it returns nil so the registry uses the
// bundled dataset. A configured source that cannot be read is a startup
// misconfiguration.
func loadFPOEntries(ctx context.Context, cfg *config.Config) ([]fpo.Entry, error) {
	switch {
	case cfg.FPO.WorkbookPath != "":
		entries, err := fpo.LoadWorkbook(cfg.FPO.WorkbookPath)
		if err != nil {
			return nil, &config.ConfigurationError{Field: "fpo.workbook_path", Err: err}
		}
		return entries, nil
	case cfg.FPO.S3Bucket != "" && cfg.FPO.S3Key != "":
		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.FPO.S3Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.FPO.S3Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, &config.ConfigurationError{Field: "fpo.s3_bucket", Err: err}
		}
		src := fpo.NewS3Source(
			fpo.WithS3Bucket(cfg.FPO.S3Bucket),
			fpo.WithS3Key(cfg.FPO.S3Key),
			fpo.WithS3Client(s3.NewFromConfig(awsCfg)),
		)
		entries, err := src.Load(ctx)
		if err != nil {
			return nil, &config.ConfigurationError{Field: "fpo.s3_key", Err: err}
		}
		return entries, nil
	}
	return nil, nil
}

// buildRetrieval wires the advisory and scheme tools over the embedder
// and vector engine. Without an embedder both retrieval tools stay out
// of the registry; the rest of the assistant works unaffected.
func buildRetrieval(ctx context.Context, cfg *config.Config, logger zerolog.Logger) ([]tools.Tool, error) {
	emb, err := buildEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if emb == nil {
		return nil, nil
	}
	engine, err := buildEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}

	advisoryRetriever := retriever.New(emb, engine, config.AdvisoryCollection,
		retriever.WithTopK(cfg.Vector.AdvisoryTopK),
		retriever.WithMinScore(cfg.Vector.AdvisoryMinScore),
		retriever.WithLogger(logger.With().Str("component", "advisory").Logger()),
	)
	schemeRetriever := retriever.New(emb, engine, config.SchemeCollection,
		retriever.WithTopK(cfg.Vector.SchemeTopK),
		retriever.WithLogger(logger.With().Str("component", "schemes").Logger()),
	)
	return []tools.Tool{
		schemestool.New(schemeRetriever),
		advisorytool.New(advisoryRetriever),
	}, nil
}

// buildEmbedder constructs the configured embedding client, nil when no
// provider is configured.
func buildEmbedder(ctx context.Context, cfg *config.Config) (embedder.Embedder, error) {
	model := embeddingModel(cfg)
	switch cfg.Embedder.Provider {
	case "openai":
		c := openai.DefaultConfig(cfg.Embedder.APIKey)
		if cfg.Embedder.BaseURL != "" {
			c.BaseURL = cfg.Embedder.BaseURL
		}
		return providers.FromOpenAI(openai.NewClientWithConfig(c), embedder.WithModel(model)), nil
	case "gemini":
		clt, err := gemini.NewClient(ctx, option.WithAPIKey(cfg.Embedder.APIKey))
		if err != nil {
			return nil, &config.ConfigurationError{Field: "embedder.api_key", Err: err}
		}
		return providers.FromGemini(clt, embedder.WithModel(model)), nil
	}
	return nil, nil
}

// buildEngine constructs the configured vector store backend.
func buildEngine(ctx context.Context, cfg *config.Config) (vectordb.Engine, error) {
	switch cfg.Vector.Engine {
	case "chromem":
		db, err := chromemgo.NewPersistentDB(cfg.Vector.Dir, false)
		if err != nil {
			return nil, &config.ConfigurationError{Field: "vector.dir", Err: err}
		}
		return engines.FromChromem(db), nil
	case "milvus":
		db, err := milvusClient.NewClient(ctx, milvusClient.Config{Address: cfg.Vector.MilvusAddress})
		if err != nil {
			return nil, &config.ConfigurationError{Field: "vector.milvus_address", Err: err}
		}
		return engines.FromMilvus(db), nil
	default:
		return engines.FromMemory()
	}
}

// buildComposer constructs the phrasing path for the configured LLM
// provider, nil when phrasing stays on the deterministic template.
func buildComposer(ctx context.Context, cfg *config.Config) (agents.Composer, error) {
	if cfg.LLM.Provider == "" {
		return nil, nil
	}
	model := llmModel(cfg)
	agentOpts := []agents.Option{
		agents.WithModel(model),
		agents.WithTemperature(float32(cfg.LLM.Temperature)),
		agents.WithMaxTokens(cfg.LLM.MaxTokens),
	}

	switch cfg.LLM.Provider {
	case "openai":
		c := openai.DefaultConfig(cfg.LLM.APIKey)
		if cfg.LLM.BaseURL != "" {
			c.BaseURL = cfg.LLM.BaseURL
		}
		clt := instructor.FromOpenAI(openai.NewClientWithConfig(c),
			instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(3), instructor.WithValidation())
		return agents.NewPhraser(append(agentOpts, agents.WithClient(clt))...), nil
	case "anthropic":
		var clientOpts []anthropic.ClientOption
		if cfg.LLM.BaseURL != "" {
			clientOpts = append(clientOpts, anthropic.WithBaseURL(cfg.LLM.BaseURL))
		}
		clt := instructor.FromAnthropic(anthropic.NewClient(cfg.LLM.APIKey, clientOpts...),
			instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(3), instructor.WithValidation())
		return agents.NewPhraser(append(agentOpts, agents.WithClient(clt))...), nil
	case "cohere":
		clientOpts := []cohereOption.RequestOption{cohereOption.WithToken(cfg.LLM.APIKey)}
		if cfg.LLM.BaseURL != "" {
			clientOpts = append(clientOpts, cohereOption.WithBaseURL(cfg.LLM.BaseURL))
		}
		clt := instructor.FromCohere(cohereClient.NewClient(clientOpts...),
			instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(3), instructor.WithValidation())
		return agents.NewPhraser(append(agentOpts, agents.WithClient(clt))...), nil
	case "gemini":
		clt, err := gemini.NewClient(ctx, option.WithAPIKey(cfg.LLM.APIKey))
		if err != nil {
			return nil, &config.ConfigurationError{Field: "llm.api_key", Err: err}
		}
		return agents.NewGeminiComposer(clt, agentOpts...), nil
	}
	return nil, nil
}

// llmModel resolves the phrasing model. The package default is a Gemini
// model, so any other provider falls back to its own default unless the
// config names a model explicitly.
func llmModel(cfg *config.Config) string {
	if cfg.LLM.Model != "" && cfg.LLM.Model != config.DefaultLLMModel {
		return cfg.LLM.Model
	}
	switch cfg.LLM.Provider {
	case "openai":
		return "gpt-4o-mini"
	case "anthropic":
		return "claude-3-5-haiku-latest"
	case "cohere":
		return "command-r"
	}
	return config.DefaultLLMModel
}

// embeddingModel resolves the embedding model per provider.
func embeddingModel(cfg *config.Config) string {
	if cfg.Embedder.Model != "" {
		return cfg.Embedder.Model
	}
	switch cfg.Embedder.Provider {
	case "gemini":
		return "text-embedding-004"
	default:
		return "text-embedding-3-small"
	}
}
