package http

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"

	"slidecast/internal/app"
)

// Router exposes the REST surface next to the two websocket channels.
type Router struct {
	service *app.GameService
	assets  app.AssetStore
	// joinBaseURL prefixes the join link encoded in QR codes,
	// e.g. "https://slidecast.example/join".
	joinBaseURL string
}

func NewRouter(service *app.GameService, joinBaseURL string) *Router {
	return &Router{service: service, joinBaseURL: joinBaseURL}
}

// WithAssetStore enables the asset upload endpoint.
func (rt *Router) WithAssetStore(store app.AssetStore) *Router {
	rt.assets = store
	return rt
}

func (rt *Router) Handler() http.Handler {
	ws := NewWSHandler(rt.service)
	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	router.HandlerFunc(http.MethodGet, "/ws/play", ws.ServePlayer)
	router.HandlerFunc(http.MethodGet, "/ws/host", ws.ServeHost)
	router.POST("/games", rt.createGame)
	router.GET("/games/:id/qr", rt.joinQR)
	if rt.assets != nil {
		router.POST("/assets", rt.uploadAsset)
	}
	return router
}

type createGameRequest struct {
	PresentationID string `json:"presentationId"`
}

type createGameResponse struct {
	GameID   string `json:"gameId"`
	JoinCode string `json:"joinCode"`
}

func (rt *Router) createGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PresentationID == "" {
		http.Error(w, "presentationId required", http.StatusBadRequest)
		return
	}
	session, err := rt.service.CreateGame(r.Context(), req.PresentationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(createGameResponse{GameID: session.ID(), JoinCode: session.JoinCode()})
}

// joinQR renders the join link for a game as a QR code PNG.
func (rt *Router) joinQR(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	gameID := params.ByName("id")
	url := rt.joinBaseURL + "?gameId=" + gameID
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		log.Printf("qr encode failed: %v", err)
		http.Error(w, "failed to render qr", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (rt *Router) uploadAsset(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	contentType := r.Header.Get("Content-Type")
	if err := app.ValidateAsset(contentType, r.ContentLength); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, app.MaxAssetBytes+1))
	if err != nil {
		http.Error(w, "read failed", http.StatusBadRequest)
		return
	}
	if int64(len(data)) > app.MaxAssetBytes {
		http.Error(w, "asset too large", http.StatusBadRequest)
		return
	}
	url, err := rt.assets.Upload(r.Context(), r.URL.Query().Get("name"), contentType, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"url": url})
}
