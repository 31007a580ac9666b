package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sngm3741/inquiry-api/internal/config"
	"github.com/sngm3741/inquiry-api/internal/infrastructure/filelog"
	"github.com/sngm3741/inquiry-api/internal/infrastructure/mailchimp"
	mongodoc "github.com/sngm3741/inquiry-api/internal/infrastructure/mongo"
	"github.com/sngm3741/inquiry-api/internal/infrastructure/webhook"
	"github.com/sngm3741/inquiry-api/internal/inquiry/application"
	"github.com/sngm3741/inquiry-api/internal/inquiry/domain"
	adminhttp "github.com/sngm3741/inquiry-api/internal/interfaces/http/admin"
	commonhttp "github.com/sngm3741/inquiry-api/internal/interfaces/http/common"
	publichttp "github.com/sngm3741/inquiry-api/internal/interfaces/http/public"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Server は HTTP サーバーのライフサイクルを管理し、問い合わせ受付と管理 API へ依存注入するコンポジションルート。
type Server struct {
	logger         *log.Logger
	client         *mongo.Client
	inquiryRepo    *mongodoc.InquiryRepository
	inquiryLog     application.InquiryLog
	backend        string
	commands       application.InquiryCommandService
	queries        application.InquiryQueryService
	site           http.Handler
	verifiers      []operatorVerifier
	addr           string
	allowedOrigins []string
}

// New は Config と任意の Mongo クライアントを受け取り、リレー・ログ・ハンドラを組み立てた Server を返す。
// client が nil の場合は JSON ファイルへ問い合わせを記録する。
func New(cfg config.Config, client *mongo.Client) (*Server, error) {
	logger := cfg.ServerLog
	if logger == nil {
		logger = log.New(os.Stdout, "[inquiry-api] ", log.LstdFlags|log.Lshortfile)
	}

	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.NodeID, err)
	}

	srv := &Server{
		logger:         logger,
		client:         client,
		verifiers:      newOperatorVerifiers(cfg.JWTConfigs, cfg.JWTAudience),
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
	}

	if client != nil {
		srv.inquiryRepo = mongodoc.NewInquiryRepository(client.Database(cfg.MongoDatabase), cfg.InquiryCollection)
		srv.inquiryLog = srv.inquiryRepo
		srv.backend = "mongo"
	} else {
		srv.inquiryLog = filelog.New(cfg.InquiryLogPath, logger)
		srv.backend = "file"
	}

	httpClient := &http.Client{Timeout: cfg.RelayTimeout}

	// nil のままにしないとインターフェース値が非 nil 扱いになる。
	var listRelay application.Relay
	if cfg.Mailchimp.Enabled() {
		listRelay = mailchimp.New(mailchimp.Config{
			APIKey:       cfg.Mailchimp.APIKey,
			ServerPrefix: cfg.Mailchimp.ServerPrefix,
			ListID:       cfg.Mailchimp.ListID,
			BaseURL:      cfg.Mailchimp.BaseURL,
			HTTPClient:   httpClient,
			Logger:       logger,
		})
	}
	var webhookRelay application.Relay
	if cfg.WebhookURL != "" {
		webhookRelay = webhook.New(cfg.WebhookURL, httpClient)
	}

	srv.commands = application.NewInquiryCommandService(application.CommandConfig{
		Logger:    logger,
		ListRelay: listRelay,
		Webhook:   webhookRelay,
		Log:       srv.inquiryLog,
		NewID:     func() string { return node.Generate().String() },
	})
	srv.queries = application.NewInquiryQueryService(srv.inquiryLog)

	if cfg.PublicDir != "" {
		srv.site = publichttp.NewSite(cfg.PublicDir, cfg.SiteURL, logger)
	}

	return srv, nil
}

// Handler はミドルウェアとルーティングを組み立てた http.Handler を返す。
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeaders)
	router.Use(withCORS(s.allowedOrigins))
	router.MethodNotAllowed(s.methodNotAllowedHandler())

	router.Get("/healthz", s.healthHandler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:   s.logger,
		Commands: s.commands,
		Site:     s.site,
	})
	publicHandler.Register(router, noStore)

	if len(s.verifiers) > 0 {
		adminHandler := adminhttp.NewHandler(adminhttp.Config{
			Logger:  s.logger,
			Queries: s.queries,
		})
		router.Route("/admin", func(r chi.Router) {
			r.Use(noStore)
			r.Use(s.requireOperator)
			adminHandler.Register(r)
		})
	}

	return router
}

// Run は HTTP サーバーを起動し、シグナル受信まで待機する。
func (s *Server) Run() error {
	if s.inquiryRepo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.inquiryRepo.EnsureIndexes(ctx); err != nil {
			s.logger.Printf("問い合わせコレクションのインデックス作成に失敗しました: %v", err)
		}
		cancel()
	}

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP サーバー起動: http://%s (log backend: %s)", s.addr, s.backend)
		errChan <- httpServer.ListenAndServe()
	}()

	return waitForShutdown(httpServer, errChan, s)
}

func (s *Server) methodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		commonhttp.WriteFailure(s.logger, w, http.StatusMethodNotAllowed, domain.MsgMethodNotAllowed)
	}
}

// healthHandler はログ保存先の疎通を確認し、監視系からのヘルスチェック要求に応える。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if s.client != nil {
			if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
				commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
					"status":  "degraded",
					"backend": s.backend,
					"error":   err.Error(),
				})
				return
			}
		}

		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status":  "ok",
			"backend": s.backend,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// shutdown は MongoDB クライアントをタイムアウト付きで切断する。
func (s *Server) shutdown(ctx context.Context) {
	if s.client == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.Printf("MongoDB 切断時にエラー: %v", err)
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("サーバーが異常終了: %w", err)
		}
	case sig := <-sigChan:
		srv.logger.Printf("シグナル %s を受信。サーバー停止処理を開始します。", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Printf("サーバー停止時にエラー: %v", err)
		}
	}

	srv.shutdown(context.Background())
	return runErr
}
