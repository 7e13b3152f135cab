package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sushihentaime/bloghub/internal/blogservice"
	"github.com/sushihentaime/bloghub/internal/commentservice"
	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/imagestore"
	"github.com/sushihentaime/bloghub/internal/mailservice"
	"github.com/sushihentaime/bloghub/internal/userservice"
)

type application struct {
	config         *Config
	logger         *slog.Logger
	userService    *userservice.UserService
	blogService    *blogservice.BlogService
	commentService *commentservice.CommentService
	mailService    *mailservice.MailService
	broker         *common.MessageBroker
	// uploadDir is served under /uploads when images are stored locally.
	uploadDir string
}

func main() {
	configPath := flag.String("config", ".env", "path to the env configuration file")
	migrate := flag.Bool("migrate", false, "apply database migrations before serving")
	migrationsPath := flag.String("migrations", "file://migrations", "migrations source URL")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.Environment == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 25, 25, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	if *migrate {
		err = common.MigrateUp(db, *migrationsPath)
		if err != nil {
			logger.Error("failed to apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupExchange(broker)
	if err != nil {
		logger.Error("failed to setup the exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	images, uploadDir, err := openImageStore(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to open the image store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tokens := userservice.NewTokenManager(cfg.JWTSecret, userservice.AccessTokenTime)
	cache := common.NewCache(cfg.CacheTTL, 2*cfg.CacheTTL)
	blogService := blogservice.NewBlogService(db, cache, images, logger)

	app := &application{
		config:         cfg,
		logger:         logger,
		userService:    userservice.NewUserService(db, broker, tokens, logger),
		blogService:    blogService,
		commentService: commentservice.NewCommentService(db, blogService, broker, logger),
		mailService:    mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailPort, logger),
		broker:         broker,
		uploadDir:      uploadDir,
	}

	app.mailService.SendWelcomeEmail()
	app.mailService.SendCommentNotification()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// openImageStore returns the configured store and, for local storage, the directory to serve.
func openImageStore(ctx context.Context, cfg *Config) (imagestore.Store, string, error) {
	switch cfg.StorageDriver {
	case "minio":
		store, err := imagestore.NewMinIOStore(ctx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	default:
		store, err := imagestore.NewLocalStore(cfg.UploadDir, "/uploads")
		if err != nil {
			return nil, "", err
		}
		return store, store.Dir(), nil
	}
}
