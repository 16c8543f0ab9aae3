package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	chatapp "github.com/mizerolucky/Follow-Up/internal/chat/app"
	chatrepo "github.com/mizerolucky/Follow-Up/internal/chat/repository"
	"github.com/mizerolucky/Follow-Up/internal/chat/router"
	memberapp "github.com/mizerolucky/Follow-Up/internal/member/app"
	memberdomain "github.com/mizerolucky/Follow-Up/internal/member/domain"
	memberrepo "github.com/mizerolucky/Follow-Up/internal/member/repository"
	"github.com/mizerolucky/Follow-Up/pkg/config"
	"github.com/mizerolucky/Follow-Up/pkg/database"
	"github.com/mizerolucky/Follow-Up/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.FollowUpService, config.EnvConfig.FollowUpLogPath)
	cfg := config.LoadConfig[config.FollowUp](config.EnvConfig.FollowUpService, config.EnvConfig.FollowUpYAMLPath)

	ctx := context.Background()

	// 1. PostgreSQL (member 資料)
	pgURI := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pgPool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    pgURI,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to database after retries",
			zap.String("address", fmt.Sprintf("[%s:%d]", cfg.PostgreSQL.Host, cfg.PostgreSQL.Port)),
			zap.Error(err),
		)
	}
	defer pgPool.Close()

	// 2. MongoDB (聊天室 / 訊息 / 索引)
	mongoURI := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    mongoURI,
			RetryCount:    cfg.MongoSQL.RetryCount,
			RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval),
		},
		cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", mongoURI)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// 3. Redis (session / typing / presence / Pub/Sub)
	redisClient, err := database.NewRedisSimpleClient(cfg.Redis.Addr, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	defer redisClient.Close()

	// 4. MinIO (頭像 / 聊天室圖片)
	blob, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:      cfg.MinIO.Endpoint,
		User:          cfg.MinIO.User,
		Password:      cfg.MinIO.Password,
		BucketName:    cfg.MinIO.Bucket,
		UseSSL:        cfg.MinIO.UseSSL,
		RetryCount:    cfg.MinIO.RetryCount,
		RetryInterval: time.Duration(cfg.MinIO.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect minio err : %v", err))
	}

	// 5. Kafka (訊息事件流, fire-and-forget)
	eventWriter, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		RetryCount:    cfg.Kafka.RetryCount,
		RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect kafka err : %v", err))
	}
	defer eventWriter.Close()

	// 6. 初始化 Repository
	memberRepo := memberrepo.NewMemberRepository(pgPool)
	chatRepo := chatrepo.NewMongoChatRepository(mongo.Database)
	msgRepo := chatrepo.NewMongoChatMessageRepository(mongo.Database)
	userChatRepo := chatrepo.NewMongoUserChatRepository(mongo.Database)
	typingRepo := chatrepo.NewRedisTypingRepository(redisClient)
	presenceRepo := chatrepo.NewRedisPresenceRepository(redisClient)
	pub := chatrepo.NewRedisPubSub(redisClient)
	sessionRepo := database.NewRedisRepository[memberdomain.MemberSession](redisClient)
	attemptRepo := database.NewRedisRepository[int](redisClient)

	// 7. 初始化 UseCases
	memberUC := memberapp.NewMemberUseCase(memberRepo, cfg.SessionTTL, sessionRepo, attemptRepo, blob, config.EnvConfig.FollowUpService)
	chatUC := chatapp.NewChatUseCase(chatRepo, userChatRepo, memberRepo)
	sendMessageUC := chatapp.NewSendMessageUseCase(chatRepo, msgRepo, userChatRepo, typingRepo, pub, blob, eventWriter)
	typingUC := chatapp.NewTypingUseCase(typingRepo)
	presenceUC := chatapp.NewPresenceUseCase(presenceRepo, memberRepo, cfg.Presence.HeartbeatInterval, cfg.Presence.StatusTTL)

	// 8. presence mirror: 上下線事件回寫 member 的 online / last_seen
	if err := presenceUC.StartMirror(ctx); err != nil {
		logger.Log.Fatal(fmt.Sprintf("start presence mirror err : %v", err))
	}

	// 9. 啟動 Fiber
	r := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // 圖片附件走 JSON base64
	})
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.FollowUpLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	// 注册路由
	router.RegisterRoutes(r,
		memberapp.NewMemberHandler(memberUC),
		chatapp.NewChatWebsocketHandler(chatUC, sendMessageUC, typingUC, presenceUC, memberUC),
	)

	// Listen
	port := ":" + cfg.Port
	log.Printf("Follow-Up listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
