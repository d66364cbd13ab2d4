// cmd/container.go
//
// Root composition root. Owns infrastructure (DB, Redis, FS) and composes
// the campaign, usage, narrator, session and access modules. This is the
// only place that knows about ALL modules.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Abraxas-365/fateweaver/pkg/access"
	"github.com/Abraxas-365/fateweaver/pkg/ai/llm"
	"github.com/Abraxas-365/fateweaver/pkg/ai/llm/memoryx"
	"github.com/Abraxas-365/fateweaver/pkg/ai/providers/aianthropic"
	"github.com/Abraxas-365/fateweaver/pkg/ai/providers/aiazure"
	"github.com/Abraxas-365/fateweaver/pkg/ai/providers/aibedrock"
	"github.com/Abraxas-365/fateweaver/pkg/ai/providers/aigemini"
	"github.com/Abraxas-365/fateweaver/pkg/ai/providers/aiopenai"
	"github.com/Abraxas-365/fateweaver/pkg/asyncx"
	"github.com/Abraxas-365/fateweaver/pkg/campaign"
	"github.com/Abraxas-365/fateweaver/pkg/campaign/campaigninfra"
	"github.com/Abraxas-365/fateweaver/pkg/config"
	"github.com/Abraxas-365/fateweaver/pkg/fsx"
	"github.com/Abraxas-365/fateweaver/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/fateweaver/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/fateweaver/pkg/jobx"
	"github.com/Abraxas-365/fateweaver/pkg/jobx/jobxredis"
	"github.com/Abraxas-365/fateweaver/pkg/kernel"
	"github.com/Abraxas-365/fateweaver/pkg/logx"
	"github.com/Abraxas-365/fateweaver/pkg/narrator"
	"github.com/Abraxas-365/fateweaver/pkg/notifx"
	"github.com/Abraxas-365/fateweaver/pkg/notifx/notifxconsole"
	"github.com/Abraxas-365/fateweaver/pkg/notifx/notifxses"
	"github.com/Abraxas-365/fateweaver/pkg/session"
	"github.com/Abraxas-365/fateweaver/pkg/session/sessioninfra"
	"github.com/Abraxas-365/fateweaver/pkg/session/sessionsrv"
	"github.com/Abraxas-365/fateweaver/pkg/usage"
	"github.com/Abraxas-365/fateweaver/pkg/usage/usageinfra"
	"github.com/Abraxas-365/fateweaver/pkg/usage/usagesrv"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds shared infrastructure and composed module containers.
type Container struct {
	Config *config.Config

	// Infrastructure (shared across all modules)
	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	S3Client   *s3.Client

	// Campaign session
	StateStore      campaign.StateStore
	SnapshotStore   campaign.SnapshotStore
	UsageService    *usagesrv.UsageService
	Narrator        *narrator.Narrator
	TurnService     *sessionsrv.TurnService
	SessionHandlers *sessionsrv.SessionHandlers

	// Access gate
	TableAuth      fiber.Handler
	GMAuth         fiber.Handler
	AccessHandlers *access.AccessHandlers

	// Background jobs
	Jobs *jobx.Client
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure()
	c.initModules()

	logx.Info("✅ Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure — DB, Redis, file storage
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	// 1. Database (postgres storage mode only)
	if c.Config.Storage.Mode == "postgres" {
		if c.Config.Storage.DatabaseURL == "" {
			logx.Fatalf("STORAGE_MODE=postgres requires DATABASE_URL")
		}
		db, err := sqlx.Connect("postgres", c.Config.Storage.DatabaseURL)
		if err != nil {
			logx.Fatalf("Failed to connect to database: %v", err)
		}
		c.DB = db
		logx.Info("  ✅ Database connected")
	}

	// 2. Redis (turn lock and job queue, optional)
	if c.Config.RedisURL != "" {
		opts, err := redis.ParseURL(c.Config.RedisURL)
		if err != nil {
			logx.Fatalf("Invalid REDIS_URL: %v", err)
		}
		c.Redis = redis.NewClient(opts)
		if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
			logx.Fatalf("Failed to connect to Redis: %v", err)
		}
		logx.Info("  ✅ Redis connected")
	}

	// 3. File storage (local and s3 storage modes)
	if c.Config.Storage.Mode != "postgres" {
		c.initFileStorage()
	}

	logx.Info("✅ Infrastructure initialized")
}

func (c *Container) initFileStorage() {
	switch c.Config.Storage.Mode {
	case "s3":
		cfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(c.Config.Storage.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		c.S3Client = s3.NewFromConfig(cfg)
		c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, c.Config.Storage.S3Bucket, c.Config.Storage.S3Prefix)
		logx.Infof("  ✅ S3 file system configured (bucket: %s, region: %s)", c.Config.Storage.S3Bucket, c.Config.Storage.AWSRegion)

	case "local":
		localFS, err := fsxlocal.NewLocalFileSystem(c.Config.Storage.DataDir)
		if err != nil {
			logx.Fatalf("Failed to initialize local file system: %v", err)
		}
		c.FileSystem = localFS
		logx.Infof("  ✅ Local file system configured (path: %s)", localFS.GetBasePath())

	default:
		logx.Fatalf("Unknown STORAGE_MODE: %s (use 'local', 's3' or 'postgres')", c.Config.Storage.Mode)
	}
}

// ---------------------------------------------------------------------------
// Module composition — each bounded context wires itself
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	logx.Info("📦 Initializing modules...")

	c.initCampaignStorage()
	c.initUsage()
	c.initNarrator()
	c.initSession()
	c.initAccess()

	logx.Info("✅ Modules initialized")
}

func (c *Container) initCampaignStorage() {
	if c.Config.Storage.Mode == "postgres" {
		store := campaigninfra.NewPostgresCampaignStore(c.DB, kernel.DefaultCampaignID)
		if err := store.EnsureSchema(context.Background()); err != nil {
			logx.Fatalf("Failed to ensure campaign schema: %v", err)
		}
		c.StateStore = store
		c.SnapshotStore = store
		logx.Info("  ✅ Campaign storage: postgres")
		return
	}

	store := campaigninfra.NewFileCampaignStore(c.FileSystem)
	c.StateStore = store
	c.SnapshotStore = store
	logx.Infof("  ✅ Campaign storage: %s", c.Config.Storage.Mode)
}

func (c *Container) initUsage() {
	var store usage.LedgerStore
	if c.Config.Storage.Mode == "postgres" {
		pg := usageinfra.NewPostgresLedgerStore(c.DB, kernel.DefaultCampaignID)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			logx.Fatalf("Failed to ensure usage schema: %v", err)
		}
		store = pg
	} else {
		store = usageinfra.NewFileLedgerStore(c.FileSystem)
	}

	gate := usage.NewGate(c.Config.Budget.MonthlyTokenLimit, c.Config.Budget.WarnThreshold)
	c.UsageService = usagesrv.NewUsageService(store, gate)
	logx.Infof("  ✅ Usage ledger ready (monthly limit: %d tokens)", c.Config.Budget.MonthlyTokenLimit)
}

func (c *Container) initNarrator() {
	client := c.buildLLMClient()

	c.Narrator = narrator.NewNarrator(client,
		narrator.WithModel(c.Config.LLM.Model),
		narrator.WithMaxTokens(c.Config.LLM.MaxTokens),
		narrator.WithMemory(memoryx.NewWindowMemory("")),
	)
	logx.Infof("  ✅ Narrator ready (provider: %s)", c.Config.LLM.Provider)
}

func (c *Container) buildLLMClient() llm.LLM {
	switch c.Config.LLM.Provider {
	case "anthropic":
		return aianthropic.NewAnthropicProvider(getEnv("ANTHROPIC_API_KEY", ""))

	case "openai":
		return aiopenai.NewOpenAIProvider(getEnv("OPENAI_API_KEY", ""))

	case "azure":
		return aiazure.NewAzureOpenAIProvider(
			getEnv("AZURE_OPENAI_ENDPOINT", ""),
			getEnv("AZURE_OPENAI_API_KEY", ""),
		)

	case "gemini":
		provider, err := aigemini.NewGeminiProvider(context.Background(), getEnv("GEMINI_API_KEY", ""))
		if err != nil {
			logx.Fatalf("Failed to initialize Gemini provider: %v", err)
		}
		return provider

	case "bedrock":
		cfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(getEnv("AWS_REGION", "us-east-1")))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		return aibedrock.NewBedrockProvider(cfg)

	default:
		logx.Fatalf("Unknown LLM_PROVIDER: %s (use 'anthropic', 'openai', 'azure', 'gemini' or 'bedrock')", c.Config.LLM.Provider)
		return nil
	}
}

func (c *Container) initSession() {
	opts := []sessionsrv.Option{
		sessionsrv.WithSnapshotStore(c.SnapshotStore),
		sessionsrv.WithJournal(c.buildJournal()),
		sessionsrv.WithCallTimeout(c.Config.LLM.Timeout),
	}
	if alerter := c.buildAlerter(); alerter != nil {
		opts = append(opts, sessionsrv.WithAlerter(alerter))
	}

	c.TurnService = sessionsrv.NewTurnService(c.StateStore, c.UsageService, c.Narrator, c.buildLocker(), opts...)
	c.SessionHandlers = sessionsrv.NewSessionHandlers(c.TurnService)
	logx.Info("  ✅ Session service ready")
}

func (c *Container) buildLocker() session.Locker {
	if c.Redis != nil {
		logx.Info("  ✅ Turn lock: redis")
		return sessioninfra.NewRedisLocker(c.Redis, kernel.DefaultCampaignID.String())
	}
	logx.Info("  ✅ Turn lock: in-process")
	return sessioninfra.NewMutexLocker()
}

func (c *Container) buildJournal() session.TurnJournal {
	if c.Config.Storage.Mode == "postgres" {
		journal := sessioninfra.NewPostgresTurnJournal(c.DB, kernel.DefaultCampaignID)
		if err := journal.EnsureSchema(context.Background()); err != nil {
			logx.Fatalf("Failed to ensure turn journal schema: %v", err)
		}
		return journal
	}
	return sessioninfra.NewFileTurnJournal(c.FileSystem)
}

func (c *Container) buildAlerter() session.BudgetAlerter {
	if c.Config.Notifx.GMAddress == "" {
		logx.Info("  ⏭️ Budget alerts disabled (no NOTIFX_GM_ADDRESS)")
		return nil
	}

	var provider notifx.EmailSender
	switch c.Config.Notifx.Provider {
	case "ses":
		awsCfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(c.Config.Notifx.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config for SES: %v", err)
		}
		provider = notifxses.NewSESProvider(ses.NewFromConfig(awsCfg), c.Config.Notifx.FromAddress)
	default:
		provider = notifxconsole.NewConsoleProvider()
	}

	from := fmt.Sprintf("%s <%s>", c.Config.Notifx.FromName, c.Config.Notifx.FromAddress)
	alerter, err := sessioninfra.NewNotifxBudgetAlerter(notifx.NewClient(provider), from, c.Config.Notifx.GMAddress)
	if err != nil {
		logx.Fatalf("Failed to initialize budget alerter: %v", err)
	}
	logx.Infof("  ✅ Budget alerts to %s via %s", c.Config.Notifx.GMAddress, c.Config.Notifx.Provider)
	return alerter
}

func (c *Container) initAccess() {
	if !c.Config.Access.Enabled {
		c.TableAuth = access.Open()
		c.GMAuth = access.Open()
		logx.Warn("  ⚠️ Access gate disabled, every route is open")
		return
	}

	if c.Config.Access.TokenSecret == "" {
		logx.Fatalf("ACCESS_ENABLED requires TABLE_TOKEN_SECRET")
	}
	if c.Config.Access.GMKeyHash == "" {
		logx.Fatalf("ACCESS_ENABLED requires GM_KEY_HASH (generate one with the hash-key subcommand)")
	}

	tokens := access.NewTokenService(c.Config.Access.TokenSecret, c.Config.Access.TokenTTL)
	middleware := access.NewMiddleware(tokens, c.Config.Access.GMKeyHash)

	c.TableAuth = middleware.RequireTable()
	c.GMAuth = middleware.RequireGameMaster()
	c.AccessHandlers = access.NewAccessHandlers(tokens, middleware)
	logx.Info("  ✅ Access gate enabled")
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// Bootstrap seeds the campaign document on first boot, from STATE_SEED_FILE
// when set or the built-in starter otherwise.
func (c *Container) Bootstrap(ctx context.Context) {
	if err := c.TurnService.Bootstrap(ctx, c.loadSeedState()); err != nil {
		logx.Fatalf("Failed to bootstrap campaign state: %v", err)
	}
}

func (c *Container) loadSeedState() campaign.State {
	path := c.Config.Storage.SeedFile
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logx.Fatalf("Failed to read seed file %s: %v", path, err)
	}

	var seed campaign.State
	if err := json.Unmarshal(data, &seed); err != nil {
		logx.Fatalf("Seed file %s is not a JSON object: %v", path, err)
	}

	logx.Infof("  📜 Campaign seed loaded from %s", path)
	return seed
}

func (c *Container) StartBackgroundServices(ctx context.Context) {
	logx.Info("🔄 Starting background services...")

	if c.Config.Jobx.SnapshotInterval <= 0 {
		logx.Info("  ⏭️ Scheduled snapshots disabled")
		return
	}
	if c.Redis == nil {
		logx.Warn("  ⚠️ SNAPSHOT_INTERVAL set but Redis is not configured, scheduled snapshots disabled")
		return
	}

	queue := jobxredis.NewRedisQueue(c.Redis)
	client := jobx.NewClient(queue,
		jobx.WithQueues(c.Config.Jobx.Queue),
		jobx.WithConcurrency(c.Config.Jobx.Concurrency),
		jobx.WithPollInterval(c.Config.Jobx.PollInterval),
		jobx.WithShutdownTimeout(c.Config.Jobx.ShutdownTimeout),
	)
	client.Register(sessionsrv.JobTypeScheduledSnapshot, sessionsrv.SnapshotJobHandler(c.TurnService))
	c.Jobs = client

	asyncx.Do(func() {
		if err := client.Start(ctx); err != nil {
			logx.Errorf("Job worker stopped: %v", err)
		}
	})

	asyncx.Do(func() {
		ticker := time.NewTicker(c.Config.Jobx.SnapshotInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := client.Enqueue(ctx, sessionsrv.NewSnapshotJob(c.Config.Jobx.Queue)); err != nil {
					logx.Errorf("Failed to enqueue scheduled snapshot: %v", err)
				}
			}
		}
	})

	logx.Infof("  ✅ Scheduled snapshots every %s", c.Config.Jobx.SnapshotInterval)
}

func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("  ✅ Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
