package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/heyitsgautham/skil-sync-fullstack/internal/ai/embeddings"
	"github.com/heyitsgautham/skil-sync-fullstack/internal/ai/llm"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/account/accountapi"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/account/accountinfra"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/account/accountsrv"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/admin/adminapi"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/application/applicationapi"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/application/applicationinfra"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/application/applicationsrv"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match/matchapi"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match/matchinfra"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match/matchsrv"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting/postingapi"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting/postinginfra"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting/postingsrv"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/precompute"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/precompute/precomputeinfra"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/ranking/rankingapi"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/ranking/rankingsrv"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume/resumeapi"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume/resumeinfra"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume/resumesrv"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/scoring"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/vectorstore"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/vectorstore/vectorinfra"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/fsx"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/fsx/fsxs3"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/iam/auth"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/logx"
)

const recomputeQueueName = "matching:recompute"

// Container holds all application dependencies
type Container struct {
	// Config
	AuthConfig auth.Config

	// Infrastructure
	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	S3Client   *s3.Client
	Vectors    vectorstore.Store
	Queue      *precomputeinfra.RedisQueue

	// AI
	LLMClient *llm.Client
	Embedder  *embeddings.Generator

	// Services
	TokenService       auth.TokenService
	AccountService     *accountsrv.AccountService
	ResumeService      *resumesrv.ResumeService
	PostingService     *postingsrv.PostingService
	MatchService       *matchsrv.MatchService
	ApplicationService *applicationsrv.ApplicationService
	RankingService     *rankingsrv.RankingService
	PrecomputeService  *precompute.Service
	Worker             *precompute.Worker

	// API Handlers
	AccountHandlers     *accountapi.Handlers
	ResumeHandlers      *resumeapi.Handlers
	PostingHandlers     *postingapi.Handlers
	MatchHandlers       *matchapi.Handlers
	ApplicationHandlers *applicationapi.Handlers
	RankingHandlers     *rankingapi.Handlers
	AdminHandlers       *adminapi.Handlers
}

// NewContainer initializes the dependency injection container
func NewContainer() *Container {
	c := &Container{}
	c.initInfrastructure()
	c.initServices()
	return c
}

func (c *Container) initInfrastructure() {
	// 1. Database Connection
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASS")
	dbName := os.Getenv("DB_NAME")
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPass, dbName)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	c.DB = db

	// 2. Redis Connection
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASS"),
		DB:       0,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}
	c.Queue = precomputeinfra.NewRedisQueue(c.Redis, recomputeQueueName)

	// 3. AWS S3 Configuration
	awsRegion := os.Getenv("AWS_REGION")
	awsBucket := os.Getenv("AWS_BUCKET")
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(awsRegion))
	if err != nil {
		logx.Fatalf("unable to load SDK config, %v", err)
	}
	c.S3Client = s3.NewFromConfig(cfg)
	c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, awsBucket, "uploads")

	// 4. Auth Config
	c.AuthConfig = auth.DefaultConfig()
	c.AuthConfig.JWT.SecretKey = os.Getenv("JWT_SECRET")
	if c.AuthConfig.JWT.SecretKey == "" {
		logx.Warn("JWT_SECRET is not set, using default (unsafe for production)")
		c.AuthConfig.JWT.SecretKey = "super-secret-key-please-change-me-in-production"
	}

	// 5. AI clients
	pool := llm.NewKeyPoolFromEnv()
	if pool.Size() == 0 {
		logx.Warn("no LLM API keys configured, falling back to deterministic extraction")
	} else {
		c.LLMClient = llm.NewClient(pool, os.Getenv("LLM_MODEL"))
	}

	dims := embeddings.DefaultDimensions
	if v, err := strconv.Atoi(os.Getenv("EMBEDDING_DIMENSIONS")); err == nil && v > 0 {
		dims = v
	}
	c.Embedder = embeddings.NewGenerator(os.Getenv("OPENAI_API_KEY"), dims)

	// 6. Vector store
	c.Vectors = vectorinfra.NewPgvectorStore(c.DB)
}

func (c *Container) initServices() {
	// --- Repositories ---
	accountRepo := accountinfra.NewPostgresAccountRepository(c.DB)
	resumeRepo := resumeinfra.NewPostgresResumeRepository(c.DB)
	postingRepo := postinginfra.NewPostgresPostingRepository(c.DB)
	matchRepo := matchinfra.NewPostgresMatchRepository(c.DB)
	applicationRepo := applicationinfra.NewPostgresApplicationRepository(c.DB)

	// --- Auth services ---
	c.TokenService = auth.NewJWTService(
		c.AuthConfig.JWT.SecretKey,
		c.AuthConfig.JWT.AccessTokenTTL,
		c.AuthConfig.JWT.Issuer,
	)
	passwordSvc := auth.NewBcryptPasswordService()

	// --- Domain services ---
	c.AccountService = accountsrv.NewAccountService(accountRepo, resumeRepo, matchRepo, passwordSvc, c.TokenService)

	extractor := resumesrv.NewExtractor(c.LLMClient)
	c.ResumeService = resumesrv.NewResumeService(
		resumeRepo, accountRepo, matchRepo, c.FileSystem,
		c.Embedder, c.Vectors, extractor, c.LLMClient, c.Queue,
	)

	c.PostingService = postingsrv.NewPostingService(
		postingRepo, matchRepo, c.Embedder, c.Vectors, c.LLMClient, c.Queue,
	)

	explainer := scoring.NewExplainer(c.LLMClient)
	c.MatchService = matchsrv.NewMatchService(matchRepo, resumeRepo, postingRepo, c.Vectors, explainer)

	c.ApplicationService = applicationsrv.NewApplicationService(
		applicationRepo, resumeRepo, postingRepo, matchRepo, c.Vectors,
	)

	c.RankingService = rankingsrv.NewRankingService(
		applicationRepo, accountRepo, resumeRepo, matchRepo, postingRepo, c.Vectors,
	)

	c.PrecomputeService = precompute.NewService(
		accountRepo, resumeRepo, postingRepo, matchRepo, c.Vectors, c.Embedder,
	)

	concurrency := precompute.DefaultConcurrency
	if v, err := strconv.Atoi(os.Getenv("WORKER_CONCURRENCY")); err == nil && v > 0 {
		concurrency = v
	}
	c.Worker = precompute.NewWorker(c.Queue, c.PrecomputeService, concurrency)

	// --- Handlers ---
	c.AccountHandlers = accountapi.NewHandlers(c.AccountService)
	c.ResumeHandlers = resumeapi.NewHandlers(c.ResumeService)
	c.PostingHandlers = postingapi.NewHandlers(c.PostingService)
	c.MatchHandlers = matchapi.NewHandlers(c.MatchService)
	c.ApplicationHandlers = applicationapi.NewHandlers(c.ApplicationService)
	c.RankingHandlers = rankingapi.NewHandlers(c.RankingService)
	c.AdminHandlers = adminapi.NewHandlers(c.Queue, c.PrecomputeService, c.ResumeService, c.Vectors, matchRepo)
}
