package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hardcore-quiz-service/internal/app"
	"hardcore-quiz-service/internal/domain"
	"hardcore-quiz-service/internal/logger"
)

// Handler exposes the engine over JSON HTTP and a WebSocket play channel.
type Handler struct {
	engine *app.Engine
	auth   Authenticator
	wsAuth Authenticator
	log    *logger.Logger
	ws     *WSHandler
}

type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	allowedOrigins []string
}

// WithAllowedOrigins lists the browser origins allowed to open the WebSocket
// besides the service's own host.
func WithAllowedOrigins(origins ...string) HandlerOption {
	return func(o *handlerOptions) {
		o.allowedOrigins = append(o.allowedOrigins, origins...)
	}
}

func NewHandler(engine *app.Engine, auth Authenticator, log *logger.Logger, opts ...HandlerOption) *Handler {
	if auth == nil {
		auth = HeaderAuthenticator{}
	}
	if log == nil {
		log = logger.Nop()
	}
	var o handlerOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Handler{
		engine: engine,
		auth:   auth,
		wsAuth: SocketAuthenticator{Base: auth},
		log:    log,
		ws:     NewWSHandler(engine, log, o.allowedOrigins...),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.With(h.authenticateWith(h.wsAuth)).Get("/ws", h.ws.ServeWS)

	r.Group(func(r chi.Router) {
		r.Use(h.authenticateWith(h.auth))

		r.Get("/quizzes/{quizID}", h.handleQuizStatus)
		r.Post("/quizzes/{quizID}/attempts", h.handleStartAttempt)
		r.Post("/quizzes/{quizID}/answers", h.handleAnswer)
		r.Post("/quizzes/{quizID}/finish", h.handleFinish)
		r.Post("/quizzes/{quizID}/powercards", h.handleUsePowerCard)
		r.Post("/quizzes/{quizID}/unlocks", h.handlePurchaseUnlock)
		r.Get("/quizzes/{quizID}/unlocks", h.handleListUnlocks)

		r.Get("/wallet", h.handleWallet)
		r.Get("/powercards", h.handlePowerCardCatalog)
		r.Post("/powercards/purchase", h.handlePurchasePowerCards)
	})
	return r
}

func (h *Handler) handleQuizStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.engine.QuizStatus(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) handleStartAttempt(w http.ResponseWriter, r *http.Request) {
	sub, err := h.engine.StartOrResume(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var in domain.AnswerSubmission
	if err := decode(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	result, err := h.engine.AnswerQuestion(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "quizID"), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleFinish(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.FinishAttempt(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type powerCardRequest struct {
	QuestionID string `json:"questionId"`
	Type       string `json:"type"`
}

func (h *Handler) handleUsePowerCard(w http.ResponseWriter, r *http.Request) {
	var in powerCardRequest
	if err := decode(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	use, err := h.engine.UsePowerCard(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "quizID"), in.QuestionID, in.Type)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, use)
}

type unlockRequest struct {
	QuestionID string `json:"questionId"`
}

func (h *Handler) handlePurchaseUnlock(w http.ResponseWriter, r *http.Request) {
	var in unlockRequest
	if err := decode(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	result, err := h.engine.PurchaseQuestionUnlock(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "quizID"), in.QuestionID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListUnlocks(w http.ResponseWriter, r *http.Request) {
	questions, err := h.engine.ListUnlockedQuestions(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (h *Handler) handleWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.engine.Wallet(r.Context(), userFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

func (h *Handler) handlePowerCardCatalog(w http.ResponseWriter, r *http.Request) {
	offers, err := h.engine.PowerCardCatalog(r.Context(), userFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": offers})
}

type purchaseRequest struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) handlePurchasePowerCards(w http.ResponseWriter, r *http.Request) {
	var in purchaseRequest
	if err := decode(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	wallet, err := h.engine.PurchasePowerCards(r.Context(), userFromContext(r.Context()), in.Type, in.Quantity)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Wrap(domain.KindInvalidRequest, err, "malformed request body")
	}
	return nil
}
