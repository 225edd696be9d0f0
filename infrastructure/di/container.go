// Package di assembles the object graph by hand. Construction order
// mirrors the dependency direction: config, observability, stores, cache,
// domain services, application services, transport.
package di

import (
	"context"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"netgraph-backend/application/ports"
	"netgraph-backend/application/services"
	domainconfig "netgraph-backend/domain/config"
	"netgraph-backend/domain/insights"
	"netgraph-backend/infrastructure/cache"
	"netgraph-backend/infrastructure/concurrency"
	infraconfig "netgraph-backend/infrastructure/config"
	"netgraph-backend/infrastructure/crypto"
	"netgraph-backend/infrastructure/messaging"
	"netgraph-backend/infrastructure/persistence/cached"
	"netgraph-backend/infrastructure/persistence/dynamodb"
	"netgraph-backend/infrastructure/persistence/memory"
	"netgraph-backend/infrastructure/persistence/resilience"
	"netgraph-backend/interfaces/http/rest"
	"netgraph-backend/pkg/observability"
)

// Container holds the assembled service.
type Container struct {
	Config  *infraconfig.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	Graphs    ports.GraphRepository
	Insights  ports.InsightRepository
	Keys      ports.KeyStore
	Publisher ports.EventPublisher
	Templates ports.TemplateProvider

	Ingestion *services.IngestionService
	Engine    *services.InsightEngine
	Pool      *concurrency.AnalysisPool

	Router http.Handler

	closers []func() error
}

// New builds the container from environment configuration.
func New(ctx context.Context) (*Container, error) {
	cfg, err := infraconfig.Load()
	if err != nil {
		return nil, err
	}
	logger, err := observability.NewLogger(cfg.Environment)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}
	if err := c.wireStores(ctx); err != nil {
		return nil, err
	}
	if err := c.wireServices(ctx); err != nil {
		return nil, err
	}
	c.wireTransport(ctx)
	return c, nil
}

func (c *Container) wireStores(ctx context.Context) error {
	cfg := c.Config

	var graphs ports.GraphRepository
	if cfg.IsLocal() {
		graphs = memory.NewGraphStore()
		c.Insights = memory.NewInsightStore()
		c.Keys = memory.NewKeyStore()
	} else {
		client, err := dynamodb.NewClient(ctx, cfg.AWSRegion)
		if err != nil {
			return err
		}
		table := dynamodb.TableConfig{
			TableName:      cfg.TableName,
			OwnerIndexName: cfg.OwnerIndexName,
		}
		graphs = resilience.NewGraphRepository(
			dynamodb.NewGraphRepository(client, table, c.Logger),
			"graph-store",
			c.Logger,
		)
		c.Insights = dynamodb.NewInsightRepository(client, table, c.Logger)
		c.Keys = dynamodb.NewKeyStore(client, table)
	}

	var graphCache ports.GraphCache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, c.Logger)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, redisCache.Close)
		graphCache = redisCache
	} else {
		memCache := cache.NewMemoryCache(cfg.CacheMaxItems, cfg.CacheMaxMemory, c.Logger)
		memCache.StartCleanup(ctx, cfg.CacheTTL)
		graphCache = memCache
	}
	c.Graphs = cached.NewGraphRepository(graphs, graphCache, cfg.CacheTTL, c.Metrics, c.Logger)
	return nil
}

func (c *Container) wireServices(ctx context.Context) error {
	cfg := c.Config
	domainCfg := domainconfig.DefaultDomainConfig()

	keyManager, err := crypto.NewKeyManager(c.Keys, cfg.MasterKey, c.Logger)
	if err != nil {
		return err
	}

	if cfg.TemplatePath != "" && cfg.WatchTemplate {
		provider, err := infraconfig.NewWatchingTemplateProvider(cfg.TemplatePath, c.Logger)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, provider.Close)
		c.Templates = provider
	} else if cfg.TemplatePath != "" {
		templates, err := infraconfig.LoadTemplates(cfg.TemplatePath)
		if err != nil {
			return err
		}
		c.Templates = infraconfig.NewStaticTemplateProvider(templates)
	} else {
		c.Templates = infraconfig.NewStaticTemplateProvider(insights.DefaultLibrary())
	}

	if cfg.EventBusName != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return err
		}
		c.Publisher = messaging.NewEventBridgePublisher(
			awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, c.Logger)
	} else {
		c.Publisher = messaging.NewLocalDispatcher(c.Logger)
	}

	c.Ingestion = services.NewIngestionService(keyManager, c.Graphs, domainCfg, c.Logger)
	c.Engine = services.NewInsightEngine(
		c.Graphs,
		c.Insights,
		services.NewAnalysisService(domainCfg, c.Logger),
		insights.NewMatcher(domainCfg, c.Logger),
		c.Templates,
		c.Publisher,
		c.Metrics,
		c.Logger,
	)
	return nil
}

func (c *Container) wireTransport(ctx context.Context) {
	cfg := c.Config
	c.Pool = concurrency.NewAnalysisPool(c.Engine, concurrency.PoolConfig{
		Workers:    cfg.AnalysisWorkers,
		QueueSize:  cfg.AnalysisQueueSize,
		JobTimeout: cfg.AnalysisTimeout,
	}, c.Logger)
	c.Pool.Start(ctx)

	handler := rest.NewGraphHandler(c.Ingestion, c.Engine, c.Pool, c.Metrics, c.Logger)
	c.Router = rest.NewRouter(handler, c.Metrics, c.Logger)
}

// Close stops the pool and releases infrastructure resources.
func (c *Container) Close() {
	c.Pool.Stop()
	for _, closer := range c.closers {
		if err := closer(); err != nil {
			c.Logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = c.Logger.Sync()
}
