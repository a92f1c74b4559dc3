package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"account-api/internal/auth"
	"account-api/internal/config"
	apphttp "account-api/internal/http"
	"account-api/internal/mail"
	"account-api/internal/repository"
	"account-api/internal/repository/mongodb"
	"account-api/internal/repository/sqlite"
	"account-api/internal/service"
	"account-api/internal/storage"
	"account-api/internal/token"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, closeStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup store: %v", err)
	}
	defer closeStore()

	if err := users.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}

	revoker, closeRevoker, err := buildRevoker(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup revocation: %v", err)
	}
	defer closeRevoker()

	mailer, err := buildMailer(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup mail: %v", err)
	}

	codec, err := token.NewCodec([]byte(cfg.Auth.Secret))
	if err != nil {
		logger.Fatalf("setup token codec: %v", err)
	}

	accounts := service.NewAccountService(users, codec, revoker, service.Config{
		LoginTTL:    cfg.Auth.LoginTTL,
		SessionTTL:  cfg.Auth.SessionTTL,
		RequireName: cfg.Auth.RequireName,
		Logger:      logger,
	})
	resets := service.NewPasswordResetService(users, mailer, revoker, service.ResetConfig{
		TokenTTL: cfg.Auth.ResetTTL,
		BaseURL:  cfg.Mail.BaseURL,
		Logger:   logger,
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(accounts, resets, auth.NewMiddleware(codec, revoker, logger), logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.UserRepository, func(), error) {
	switch cfg.Database.Driver {
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Database.URI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ping mongo: %w", err)
		}
		logger.Infof("using mongo database %s", cfg.Database.Name)
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warnf("mongo disconnect: %v", err)
			}
		}
		return mongodb.NewUserRepository(client.Database(cfg.Database.Name)), closeFn, nil
	default:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		logger.Infof("using sqlite database %s", cfg.Database.Path)
		return sqlite.NewUserRepository(db), func() { db.Close() }, nil
	}
}

func buildRevoker(ctx context.Context, cfg config.Config, logger *logrus.Logger) (auth.Revoker, func(), error) {
	if cfg.Redis.Addr == "" {
		return auth.NopRevoker{}, func() {}, nil
	}

	rdb, err := auth.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		return nil, nil, err
	}
	logger.Infof("token revocation backed by redis at %s", cfg.Redis.Addr)

	// Entries only need to outlive the longest token they can reject.
	ttl := cfg.Auth.SessionTTL
	if cfg.Auth.LoginTTL > ttl {
		ttl = cfg.Auth.LoginTTL
	}
	return auth.NewRedisRevoker(rdb, ttl), func() { rdb.Close() }, nil
}

func buildMailer(ctx context.Context, cfg config.Config, logger *logrus.Logger) (mail.Sender, error) {
	switch cfg.Mail.Driver {
	case "smtp":
		logger.Infof("sending mail through %s:%d", cfg.Mail.Host, cfg.Mail.Port)
		return mail.NewSMTPSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From), nil
	case "s3":
		client, err := storage.NewS3Client(ctx, cfg.Mail.Region, cfg.Mail.Endpoint)
		if err != nil {
			return nil, err
		}
		logger.Infof("writing mail to s3 bucket %s (region %s)", cfg.Mail.Bucket, cfg.Mail.Region)
		return mail.NewOutbox(storage.NewS3Service(client), cfg.Mail.Bucket, cfg.Mail.Prefix, cfg.Mail.From), nil
	default:
		return mail.NewLogSender(logger), nil
	}
}
