package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mross/choreboard/internal/backup"
	"github.com/mross/choreboard/internal/chore"
	"github.com/mross/choreboard/internal/config"
	"github.com/mross/choreboard/internal/handler"
	"github.com/mross/choreboard/internal/member"
	"github.com/mross/choreboard/internal/middleware"
	"github.com/mross/choreboard/internal/push"
	"github.com/mross/choreboard/internal/snapshot"
	"github.com/mross/choreboard/internal/store"
	ws "github.com/mross/choreboard/internal/websocket"
)

type Server struct {
	db            *sql.DB
	bus           *snapshot.Bus
	choreStore    *store.ChoreStore
	householdH    *handler.HouseholdHandler
	memberH       *handler.MemberHandler
	choreH        *handler.ChoreHandler
	pushH         *handler.PushHandler
	pushScheduler *push.Scheduler
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(cfg config.Config, db *sql.DB, logger *slog.Logger) *Server {
	bus := snapshot.NewBus()

	choreStore := store.NewChoreStore(db)
	memberStore := store.NewMemberStore(db)
	householdStore := store.NewHouseholdStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	machine := chore.NewMachine(choreStore)
	resolver := member.NewResolver(memberStore)

	pushService := push.NewService(push.Config{
		VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
		Subscriber:      cfg.Push.Subscriber,
	})
	pushScheduler := push.NewScheduler(pushService, pushStore, choreStore,
		logger.With("component", "push"))

	backupManager := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.Backup.S3Endpoint,
			Bucket:    cfg.Backup.S3Bucket,
			Region:    cfg.Backup.S3Region,
			AccessKey: cfg.Backup.S3Access,
			SecretKey: cfg.Backup.S3Secret,
		},
		DBPath:     cfg.DBPath,
		Passphrase: cfg.Backup.Passphrase,
		Interval:   cfg.Backup.Interval,
		Retain:     cfg.Backup.Retain,
	}, db, backupStore, logger.With("component", "backup"))

	return &Server{
		db:            db,
		bus:           bus,
		choreStore:    choreStore,
		householdH:    handler.NewHouseholdHandler(householdStore, logger),
		memberH:       handler.NewMemberHandler(memberStore, resolver, logger),
		choreH:        handler.NewChoreHandler(choreStore, memberStore, machine, resolver, bus, logger),
		pushH:         handler.NewPushHandler(pushStore, pushService, logger),
		pushScheduler: pushScheduler,
		backupManager: backupManager,
		logger:        logger,
	}
}

// PushScheduler returns the overdue-reminder scheduler for lifecycle wiring.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// BackupManager returns the backup manager for lifecycle wiring.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Households and members
	mux.HandleFunc("POST /api/households", s.householdH.Create)
	mux.HandleFunc("GET /api/households", s.householdH.List)
	mux.HandleFunc("GET /api/households/{household_id}", s.householdH.Get)
	mux.HandleFunc("GET /api/households/{household_id}/members", s.memberH.List)
	mux.HandleFunc("POST /api/households/{household_id}/members", s.memberH.Create)

	// Chores
	mux.HandleFunc("POST /api/households/{household_id}/chores", s.choreH.Create)
	mux.HandleFunc("GET /api/households/{household_id}/chores", s.choreH.List)
	mux.HandleFunc("GET /api/households/{household_id}/chores/{id}", s.choreH.Get)
	mux.HandleFunc("PUT /api/households/{household_id}/chores/{id}", s.choreH.Update)
	mux.HandleFunc("DELETE /api/households/{household_id}/chores/{id}", s.choreH.Delete)
	mux.HandleFunc("POST /api/households/{household_id}/chores/{id}/complete", s.choreH.Complete)
	mux.HandleFunc("POST /api/households/{household_id}/chores/{id}/undo", s.choreH.Undo)

	// Push subscriptions
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	mux.HandleFunc("POST /api/households/{household_id}/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)

	// Live snapshots
	mux.HandleFunc("GET /ws", ws.Handler(s.bus, s.choreStore, s.logger.With("component", "websocket")))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
