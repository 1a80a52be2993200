package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/games", handler.ListGames)
	mux.HandleFunc("GET /api/games/{id}", handler.GetGame)
	mux.HandleFunc("GET /api/table", handler.GetTable)
	mux.HandleFunc("GET /api/players", handler.ListPlayers)
	mux.HandleFunc("GET /api/players/stats/goals/{n}", handler.ListTopScorers)
}

func registerInternalIngestRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /api/internal/ingest/{kind}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.StartIngestRun)))
	mux.Handle("GET /api/internal/ingest/runs/{runID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.GetIngestRun)))
}
