// Package app wires the HTTP surface, the background task executor, and the
// inbound reply listener around the workflow services.
package app

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	channelpkg "bizflow/apps/orchestrator/internal/channel"
	"bizflow/apps/orchestrator/internal/config"
	"bizflow/apps/orchestrator/internal/dispatch"
	"bizflow/apps/orchestrator/internal/docstore"
	"bizflow/apps/orchestrator/internal/ledger"
	"bizflow/apps/orchestrator/internal/observability"
	"bizflow/apps/orchestrator/internal/scheduler"
	"bizflow/apps/orchestrator/internal/service/content"
	"bizflow/apps/orchestrator/internal/service/nurturing"
	"bizflow/apps/orchestrator/internal/service/review"
	"bizflow/apps/orchestrator/internal/textgen"
)

const version = "0.1.0"

type Server struct {
	cfg   config.Config
	store *docstore.Store

	runs      *ledger.Ledger
	scheduler *scheduler.Service
	nurturing *nurturing.Service
	review    *review.Service
	content   *content.Service

	executorStop chan struct{}
	executorDone chan struct{}
	executorWG   sync.WaitGroup
	closeOnce    sync.Once

	inboundMu sync.RWMutex
	inbound   inboundRuntimeState
}

func NewServer(cfg config.Config) (*Server, error) {
	store, err := docstore.NewStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return newServer(cfg, store), nil
}

func newServer(cfg config.Config, store *docstore.Store) *Server {
	runs := ledger.New(store)
	dispatcher := dispatch.New(dispatch.Dependencies{
		Email: channelpkg.NewEmailSender(),
		Sms:   channelpkg.NewSmsSender(),
	})
	textGen := textgen.New()
	sched := scheduler.NewService(scheduler.Dependencies{Store: store})

	srv := &Server{
		cfg:       cfg,
		store:     store,
		runs:      runs,
		scheduler: sched,
		nurturing: nurturing.NewService(nurturing.Dependencies{
			Store:      store,
			Runs:       runs,
			Dispatcher: dispatcher,
			TextGen:    textGen,
			Scheduler:  sched,
		}),
		review: review.NewService(review.Dependencies{
			Store:      store,
			Runs:       runs,
			Dispatcher: dispatcher,
			TextGen:    textGen,
			Scheduler:  sched,
		}),
		content: content.NewService(content.Dependencies{
			Store:   store,
			Runs:    runs,
			TextGen: textGen,
		}),
		executorStop: make(chan struct{}),
		executorDone: make(chan struct{}),
	}
	srv.startExecutor()
	srv.startInboundSupervisor()
	return srv
}

// Close stops the background executor and waits for in-flight task
// executions to finish.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.executorStop)
		<-s.executorDone
		s.executorWG.Wait()
	})
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(observability.RequestID)
	r.Use(observability.Logging)
	r.Use(cors)

	r.Get("/version", s.handleVersion)
	r.Get("/healthz", s.handleHealthz)

	r.Route("/workflows", func(r chi.Router) {
		r.Post("/leads/{lead_id}/process", s.processLead)
		r.Post("/leads/{lead_id}/follow-up", s.processFollowUp)
		r.Post("/interactions/{interaction_id}/reply", s.processReply)
		r.Post("/sales/{sale_id}/process", s.processSale)
		r.Post("/companies/{company_id}/generate-content", s.generateContent)
		r.Get("/runs", s.listRuns)
		r.Get("/runs/{run_id}", s.getRun)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.listTasks)
		r.Post("/", s.createTask)
		r.Post("/recurring", s.createRecurringTask)
		r.Get("/{task_id}", s.getTask)
		r.Put("/{task_id}", s.updateTask)
		r.Delete("/{task_id}", s.cancelTask)
		r.Post("/{task_id}/execute", s.executeTask)
	})

	r.Get("/inbound/state", s.getInboundState)

	return r
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-Request-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": version})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
