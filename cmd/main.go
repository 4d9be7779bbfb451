package main

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"github.com/davidbz/quizforge/internal/config"
	"github.com/davidbz/quizforge/internal/domain"
	"github.com/davidbz/quizforge/internal/httpserver"
	"github.com/davidbz/quizforge/internal/observability"
	"github.com/davidbz/quizforge/internal/provider/echo"
	"github.com/davidbz/quizforge/internal/provider/openai"
	"github.com/davidbz/quizforge/internal/provider/registry"
	redisstore "github.com/davidbz/quizforge/internal/store/redis"
)

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *httpserver.Server) {
		if err := server.Start(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}

	// Usage log store (Redis)
	if err := container.Provide(func(cfg *config.RedisConfig) *redis.Client {
		return redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}); err != nil {
		log.Fatalf("Failed to provide redis client: %v", err)
	}
	if err := container.Provide(func(client *redis.Client) (domain.UsageLogStore, error) {
		return redisstore.NewUsageLog(client)
	}); err != nil {
		log.Fatalf("Failed to provide usage log store: %v", err)
	}

	// Pricing and cost calculation
	if err := container.Provide(func() domain.PricingRegistry {
		reg := domain.NewInMemoryPricingRegistry()
		ctx := context.Background()
		for model, pricing := range domain.DefaultPricing() {
			if err := reg.RegisterPricing(ctx, model, pricing); err != nil {
				log.Fatalf("Failed to register pricing for %s: %v", model, err)
			}
		}
		return reg
	}); err != nil {
		log.Fatalf("Failed to provide pricing registry: %v", err)
	}
	if err := container.Provide(func(reg domain.PricingRegistry) domain.CostCalculator {
		return domain.NewStandardCostCalculator(reg)
	}); err != nil {
		log.Fatalf("Failed to provide cost calculator: %v", err)
	}

	// Completion clients
	if err := container.Provide(func() domain.ClientRegistry {
		return registry.NewRegistry()
	}); err != nil {
		log.Fatalf("Failed to provide client registry: %v", err)
	}
	if err := container.Provide(func(
		reg domain.ClientRegistry,
		openaiCfg *openai.Config,
		genCfg *config.GenerationConfig,
	) (domain.CompletionClient, error) {
		ctx := context.Background()

		if err := reg.Register(ctx, echo.NewClient()); err != nil {
			return nil, fmt.Errorf("failed to register echo client: %w", err)
		}

		// The OpenAI client is only constructed when selected so local echo
		// runs don't require a credential; a missing key for a selected
		// openai provider is fatal here, at startup.
		if genCfg.Provider == "openai" {
			client, err := openai.NewClient(*openaiCfg)
			if err != nil {
				return nil, err
			}
			if err := reg.Register(ctx, client); err != nil {
				return nil, fmt.Errorf("failed to register OpenAI client: %w", err)
			}
		}

		return reg.Get(ctx, genCfg.Provider)
	}); err != nil {
		log.Fatalf("Failed to provide completion client: %v", err)
	}

	// Domain services
	if err := container.Provide(func(store domain.UsageLogStore, cfg *config.QuotaConfig) (*domain.QuotaService, error) {
		return domain.NewQuotaService(store, cfg.Limit)
	}); err != nil {
		log.Fatalf("Failed to provide quota service: %v", err)
	}
	if err := container.Provide(func(
		client domain.CompletionClient,
		quota *domain.QuotaService,
		store domain.UsageLogStore,
		costCalculator domain.CostCalculator,
		genCfg *config.GenerationConfig,
		quotaCfg *config.QuotaConfig,
	) (*domain.GeneratorService, error) {
		return domain.NewGeneratorService(client, quota, store, costCalculator, domain.GenerationConfig{
			Model:        genCfg.Model,
			Temperature:  genCfg.Temperature,
			MaxTokens:    genCfg.MaxTokens,
			UsageLogging: quotaCfg.UsageLoggingEnabled,
		})
	}); err != nil {
		log.Fatalf("Failed to provide generator service: %v", err)
	}

	// HTTP layer
	if err := container.Provide(httpserver.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(httpserver.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}
