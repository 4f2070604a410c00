package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/aaoeclipse/serverless-qr-manager/internal/db"
	"github.com/aaoeclipse/serverless-qr-manager/internal/qrgen"
	"github.com/aaoeclipse/serverless-qr-manager/internal/quota"
	"github.com/aaoeclipse/serverless-qr-manager/internal/server"
	"github.com/aaoeclipse/serverless-qr-manager/internal/service"
	"github.com/aaoeclipse/serverless-qr-manager/internal/storage"
	"github.com/aaoeclipse/serverless-qr-manager/internal/store"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "in-memory",
			Usage: "Use an in-process table instead of DynamoDB (local development)",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	cognitoClient := cognitoidentityprovider.NewFromConfig(awsConfig)
	s3Client := s3.NewFromConfig(awsConfig)

	var (
		profiles   store.ProfileStore
		qrStore    store.QRStore
		docStore   store.DocumentStore
		quotaStore store.QuotaStore
	)
	if cCtx.Bool("in-memory") {
		logger.Warn("running against an in-process table, data will not survive restarts")
		mem := store.NewMemory()
		profiles, qrStore, docStore, quotaStore = mem, mem.QRs(), mem.Documents(), mem
	} else {
		client, err := db.Connect(ctx, awsConfig, config.UsersTable)
		if err != nil {
			return err
		}
		table := store.NewDB(client, config.UsersTable)
		profiles, qrStore, docStore, quotaStore = table, table.QRs(), table.Documents(), table
	}

	enforcer := quota.NewEnforcer(logger, profiles, quotaStore, quota.Limits{
		QR:       config.FreeTierQRLimit,
		Document: config.FreeTierDocumentLimit,
	})

	bucket := storage.NewBucket(s3Client, config.S3Bucket, time.Duration(config.UploadURLExpirySec)*time.Second)

	users := service.NewUserService(logger, profiles, cognitoClient, config.CognitoUserPoolID, config.CognitoClientID)
	qrs := service.NewQRService(logger, qrStore, enforcer, qrgen.PNGEncoder{})
	documents := service.NewDocumentService(logger, docStore, enforcer, bucket)

	jwkCache, err := jwk.NewCache(context.Background(), httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.CognitoIssuerURL)

	err = jwkCache.Register(context.Background(), jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register cognito jwk with cache: %w", err)
	}

	srv, err := server.New(
		config,
		logger,
		users,
		qrs,
		documents,
		jwkCache,
		jwksURL,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
