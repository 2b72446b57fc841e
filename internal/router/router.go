package router

import (
	"net/http"

	"Mansoor88-6/wellness-agent/internal/handler"

	"go.uber.org/zap"
)

func New(engineHandler *handler.EngineHandler, taskHandler *handler.TaskHandler, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Engine endpoints
	mux.HandleFunc("/api/v1/suggest", engineHandler.Suggest)
	mux.HandleFunc("/api/v1/ack", engineHandler.Acknowledge)
	mux.HandleFunc("/api/v1/status", engineHandler.Status)
	mux.HandleFunc("/api/v1/summary", engineHandler.Summary)

	// Task endpoints
	mux.HandleFunc("/api/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			taskHandler.CreateTask(w, r)
		case http.MethodGet:
			taskHandler.GetPendingTasks(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/tasks/complete", taskHandler.CompleteTask)

	// Logging middleware
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
		)
		mux.ServeHTTP(w, r)
	})
}
