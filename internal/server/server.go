package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/flow"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"

	"github.com/aaoeclipse/serverless-qr-manager/internal/service"
	"github.com/aaoeclipse/serverless-qr-manager/pkg/types"
)

type Service struct {
	logger *logrus.Logger
	config *types.Config

	users     *service.UserService
	qrs       *service.QRService
	documents *service.DocumentService

	cookie *securecookie.SecureCookie

	jwksCache *jwk.Cache
	jwksURL   string

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	users *service.UserService,
	qrs *service.QRService,
	documents *service.DocumentService,
	jwkCache *jwk.Cache,
	jwksURL string,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie block key: %w", err)
	}

	s := &Service{
		logger: logger,
		config: config,
		cookie: securecookie.New(hashKey, blockKey),

		users:     users,
		qrs:       qrs,
		documents: documents,

		jwksCache: jwkCache,
		jwksURL:   jwksURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/auth/signup", s.handleSignup, http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/user", s.handleGetUser, http.MethodGet)

		r.HandleFunc("/qr", s.handleListQRs, http.MethodGet)
		r.HandleFunc("/qr", s.handleCreateQR, http.MethodPost)
		r.HandleFunc("/qr/:qrId", s.handleGetQR, http.MethodGet)
		r.HandleFunc("/qr/:qrId", s.handleDeleteQR, http.MethodDelete)

		r.HandleFunc("/documents", s.handleListDocuments, http.MethodGet)
		r.HandleFunc("/documents/upload-url", s.handleCreateUpload, http.MethodPost)
		r.HandleFunc("/documents/confirm", s.handleConfirmUpload, http.MethodPost)
		r.HandleFunc("/documents/:docId", s.handleGetDocument, http.MethodGet)
		r.HandleFunc("/documents/:docId", s.handleDeleteDocument, http.MethodDelete)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextKeyUserID).(string)
	if !ok {
		return "", fmt.Errorf("user id not found in context")
	}
	return userID, nil
}
