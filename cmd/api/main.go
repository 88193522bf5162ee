package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"masterhub/internal/adapter/api"
	"masterhub/internal/adapter/api/handler"
	apimiddleware "masterhub/internal/adapter/api/middleware"
	"masterhub/internal/adapter/api/router"
	"masterhub/internal/adapter/repository"
	"masterhub/internal/infrastructure/auth"
	"masterhub/internal/infrastructure/cache"
	"masterhub/internal/infrastructure/firebase"
	"masterhub/internal/infrastructure/metrics"
	"masterhub/internal/infrastructure/ratelimit"
	"masterhub/internal/infrastructure/storage"
	"masterhub/internal/infrastructure/websocket"
	"masterhub/internal/usecase"
	"masterhub/pkg/config"
	"masterhub/pkg/logger"
	"masterhub/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []option.ClientOption
	switch {
	case cfg.FirebaseServiceAccountJSON != "":
		logger.Info("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON)))
	case cfg.FirebaseServiceAccountPath != "":
		if _, err := os.Stat(cfg.FirebaseServiceAccountPath); os.IsNotExist(err) {
			logger.Fatal("Service account file does not exist: %s", cfg.FirebaseServiceAccountPath)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.FirebaseServiceAccountPath)
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseServiceAccountPath))
	default:
		logger.Info("Using application default credentials")
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		logger.Fatal("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
	if err != nil {
		logger.Fatal("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	redisClient, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to configure Redis: %v", err)
	}
	defer redisClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)
	trackingRepo := repository.NewFirestoreTrackingRepository(firestoreClient)
	shareLinkRepo := repository.NewFirestoreShareLinkRepository(firestoreClient)
	reviewRepo := repository.NewFirestoreReviewRepository(firestoreClient)

	var (
		verifier     auth.TokenVerifier
		roleAssigner usecase.RoleAssigner
		devTokens    *handler.DevTokenHandler
	)
	if cfg.IsProduction() {
		authClient, err := firebaseApp.Auth(ctx)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase Auth: %v", err)
		}
		firebaseAuth := firebase.NewFirebaseAuthClient(authClient)
		verifier = firebaseAuth
		roleAssigner = firebaseAuth
	} else {
		logger.Warn("Using HS256 development tokens, do not run this mode in production")
		jwtVerifier := auth.NewJWTVerifier(cfg.JWTSecret)
		verifier = jwtVerifier
		devTokens = handler.NewDevTokenHandler(jwtVerifier, userRepo)
	}

	var pushSender usecase.PushSender
	if cfg.PushEnabled {
		messagingClient, err := firebaseApp.Messaging(ctx)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase Messaging: %v", err)
		}
		pushSender = firebase.NewPushSender(messagingClient)
	}

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine(10*time.Minute, ctx.Done())

	statsCache := cache.NewRedisStatsCache(redisClient, cfg.StatsCacheTTL)

	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, userRepo, wsManager, pushSender)
	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, notificationUseCase, wsManager, rateLimiter)
	trackingUseCase := usecase.NewTrackingUseCase(trackingRepo, userRepo, notificationUseCase)
	shareLinkUseCase := usecase.NewShareLinkUseCase(shareLinkRepo, trackingRepo, notificationUseCase, rateLimiter, cfg.ShareBaseURL)
	reviewUseCase := usecase.NewReviewUseCase(reviewRepo, userRepo, statsCache, notificationUseCase)
	matchingUseCase := usecase.NewMatchingUseCase(userRepo, reviewUseCase)
	profileUseCase := usecase.NewProfileUseCase(userRepo, chatRepo, storageClient, roleAssigner)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = response.HTTPErrorHandler
	e.Validator = api.NewValidator()

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.L().Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(metrics.Middleware())

	httpRateLimit := apimiddleware.NewRateLimitMiddleware(cfg.RateLimitPerMinute)
	httpRateLimit.Limiter().StartCleanupRoutine(10*time.Minute, ctx.Done())

	router.Setup(e, router.Handlers{
		Chat:         handler.NewChatHandler(chatUseCase),
		Notification: handler.NewNotificationHandler(notificationUseCase),
		Tracking:     handler.NewTrackingHandler(trackingUseCase, shareLinkUseCase),
		Review:       handler.NewReviewHandler(reviewUseCase),
		Matching:     handler.NewMatchingHandler(matchingUseCase),
		Profile:      handler.NewProfileHandler(profileUseCase),
		WebSocket:    handler.NewWebSocketHandler(wsManager, nil),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
			"firestore": func(ctx context.Context) error {
				_, err := firestoreClient.Collection("users").Limit(1).Documents(ctx).GetAll()
				return err
			},
		}),
		DevToken: devTokens,
	}, apimiddleware.NewAuthMiddleware(verifier), httpRateLimit)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}
