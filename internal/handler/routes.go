package handler

import "net/http"

// PublicRoutes are served without a bearer token
var PublicRoutes = []string{
	"GET /health",
	"POST /auth/register",
	"POST /auth/login",
}

// Handlers groups every HTTP handler the server exposes
type Handlers struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	Documents   *DocumentHandler
	Suggestions *SuggestionHandler
	Search      *SearchHandler
	Tasks       *TaskHandler
}

// RegisterRoutes mounts all routes on mux
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.HandleFunc("POST /auth/register", h.Auth.Register)
	mux.HandleFunc("POST /auth/login", h.Auth.Login)
	mux.HandleFunc("POST /auth/logout", h.Auth.Logout)

	mux.HandleFunc("POST /docs", h.Documents.CreateDocument)
	mux.HandleFunc("GET /docs", h.Documents.ListDocuments)
	mux.HandleFunc("GET /docs/{doc_id}", h.Documents.GetDocument)
	mux.HandleFunc("PUT /docs/{doc_id}", h.Documents.UpdateDocument)
	mux.HandleFunc("DELETE /docs/{doc_id}", h.Documents.DeleteDocument)
	mux.HandleFunc("GET /docs/scores/{doc_id}", h.Documents.GetScores)
	mux.HandleFunc("POST /docs/{doc_id}/final-score", h.Documents.SnapshotFinalScore)

	mux.HandleFunc("GET /fix/{doc_id}", h.Suggestions.ListSuggestions)
	mux.HandleFunc("PUT /fix/{doc_id}/all", h.Suggestions.AcceptAll) // more specific than {sentence_id}
	mux.HandleFunc("DELETE /fix/{doc_id}/all", h.Suggestions.RejectAll)
	mux.HandleFunc("PUT /fix/{doc_id}/{sentence_id}", h.Suggestions.AcceptSuggestion)
	mux.HandleFunc("DELETE /fix/{doc_id}/{sentence_id}", h.Suggestions.RejectSuggestion)

	mux.HandleFunc("GET /api/search", h.Search.Search)

	mux.HandleFunc("GET /tasks", h.Tasks.ListTasks)
	mux.HandleFunc("POST /tasks", h.Tasks.CreateTask)
	mux.HandleFunc("PUT /tasks/{task_id}", h.Tasks.UpdateTask)
	mux.HandleFunc("PUT /tasks/{task_id}/move", h.Tasks.MoveTask)
	mux.HandleFunc("DELETE /tasks/{task_id}", h.Tasks.DeleteTask)
}
