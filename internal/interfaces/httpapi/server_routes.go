package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /v1/reference/contracts", handler.GetReference)
}

func registerSessionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/session", handler.GetSession)
	mux.HandleFunc("POST /v1/session", handler.StartSession)
	mux.HandleFunc("DELETE /v1/session", handler.EndSession)
	mux.HandleFunc("POST /v1/session/new-game", handler.NewGame)
	mux.HandleFunc("POST /v1/session/rounds", handler.AddRound)
	mux.HandleFunc("PUT /v1/session/rounds/{roundID}", handler.EditRound)
	mux.HandleFunc("DELETE /v1/session/rounds/{roundID}", handler.DeleteRound)
}
