package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/mediatrack/mediatrack/internal/account"
	"github.com/mediatrack/mediatrack/internal/auth"
	"github.com/mediatrack/mediatrack/internal/config"
	"github.com/mediatrack/mediatrack/internal/database"
	"github.com/mediatrack/mediatrack/internal/settings"
	"github.com/mediatrack/mediatrack/internal/social"
	"github.com/mediatrack/mediatrack/internal/stats"
)

type MediaTrackApp struct {
	log      *log.Logger
	db       database.Repository
	mux      *http.Server
	codec    *auth.Codec
	verifier *auth.Verifier
	bindings *auth.BindingManager
	social   *social.Service
	accounts *account.Service
	settings *settings.Service
	stats    stats.StatsProvider
}

func NewMediaTrackApp(mux *http.ServeMux, logger *log.Logger, db database.Repository, st stats.StatsProvider, cfg *config.Config) *MediaTrackApp {
	settingsSvc := settings.NewService(logger, db)

	s := &MediaTrackApp{
		log:      logger,
		db:       db,
		codec:    auth.NewCodec(cfg.SigningKey, cfg.AccessSecret),
		settings: settingsSvc,
		social:   social.NewService(logger, db),
		accounts: account.NewService(logger, db),
		bindings: auth.NewBindingManager(logger, db),
		stats:    st,
	}
	s.verifier = auth.NewVerifier(logger, db, settingsSvc, auth.OwnerIdentity{
		Handle:   cfg.OwnerHandle,
		Password: cfg.OwnerPassword,
	}, cfg.AccessSecret)

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("GET /api/config", s.configProbe)
	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.Handle("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.Handle("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("POST /api/auth/password", s.authMiddleware(s.changePassword))

	mux.Handle("POST /api/device/bind", s.authMiddleware(s.bindDevice))
	mux.Handle("DELETE /api/device", s.authMiddleware(s.unbindDevice))
	mux.Handle("DELETE /api/account", s.authMiddleware(s.deleteAccount))

	mux.Handle("GET /api/accounts/search", s.authMiddleware(s.searchAccounts))
	mux.Handle("GET /api/avatar", s.authMiddleware(s.getAvatar))
	mux.Handle("PUT /api/avatar", s.authMiddleware(s.setAvatar))
	mux.Handle("DELETE /api/avatar", s.authMiddleware(s.deleteAvatar))

	mux.Handle("GET /api/friends", s.authMiddleware(s.getFriends))
	mux.Handle("DELETE /api/friends", s.authMiddleware(s.removeFriend))
	mux.Handle("POST /api/friend-requests", s.authMiddleware(s.createFriendRequest))
	mux.Handle("GET /api/friend-requests", s.authMiddleware(s.getFriendRequests))
	mux.Handle("PUT /api/friend-requests", s.authMiddleware(s.respondFriendRequest))
	mux.Handle("DELETE /api/friend-requests", s.authMiddleware(s.deleteFriendRequest))

	mux.Handle("POST /api/conversations", s.authMiddleware(s.createConversation))
	mux.Handle("GET /api/conversations", s.authMiddleware(s.getConversations))
	mux.Handle("GET /api/conversation", s.authMiddleware(s.getConversation))
	mux.Handle("PUT /api/conversation", s.authMiddleware(s.renameConversation))
	mux.Handle("DELETE /api/conversation", s.authMiddleware(s.deleteConversation))

	mux.Handle("POST /api/messages", s.authMiddleware(s.createMessage))
	mux.Handle("GET /api/messages", s.authMiddleware(s.getMessages))
	mux.Handle("POST /api/messages/read", s.authMiddleware(s.markMessagesRead))

	mux.Handle("POST /api/plays", s.authMiddleware(s.appendPlay))
	mux.Handle("GET /api/plays", s.authMiddleware(s.getPlays))
	mux.Handle("POST /api/favorites", s.authMiddleware(s.addFavorite))
	mux.Handle("DELETE /api/favorites", s.authMiddleware(s.removeFavorite))
	mux.Handle("GET /api/favorites", s.authMiddleware(s.getFavorites))
	mux.Handle("PUT /api/skip-markers", s.authMiddleware(s.setSkipMarker))
	mux.Handle("GET /api/skip-markers", s.authMiddleware(s.getSkipMarker))
	mux.Handle("POST /api/searches", s.authMiddleware(s.appendSearch))
	mux.Handle("GET /api/searches", s.authMiddleware(s.getSearches))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *MediaTrackApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *MediaTrackApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

func (s *MediaTrackApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// configProbe is public and never fails: readers of the chat flag get the
// safe default when storage misbehaves.
func (s *MediaTrackApp) configProbe(w http.ResponseWriter, r *http.Request) {
	s.writeJson(w, http.StatusOK, map[string]bool{
		"chat_enabled": s.settings.ChatEnabled(r.Context()),
	})
}
