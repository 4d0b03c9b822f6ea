package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"nursing-quiz-service/internal/app"
	"nursing-quiz-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler serves the REST surface of the quiz service.
type Handler struct {
	service  *app.QuizService
	validate *validator.Validate
}

func NewHandler(service *app.QuizService) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

// Mount registers the API routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/api/quiz", func(r chi.Router) {
		r.Get("/questions", h.listQuestions)
		r.Post("/results", h.recordResult)
		r.Get("/results/{resultID}", h.getResult)

		r.Post("/sessions", h.startSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", h.getSession)
			r.Delete("/", h.abandonSession)
			r.Post("/answer", h.selectAnswer)
			r.Post("/next", h.next)
			r.Post("/previous", h.previous)
			r.Post("/bookmark", h.toggleBookmark)
			r.Post("/submit", h.submit)
		})
	})
	r.Get("/api/guest/quota", h.guestQuota)
	r.Post("/api/guest/claim", h.claimGuest)
}

type questionsRequest struct {
	ExamType   string `json:"examType" validate:"required,max=64"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Category   string `json:"category" validate:"omitempty,max=128"`
	Limit      int    `json:"limit" validate:"gte=0,lte=1000"`
}

func (q questionsRequest) toQuery() domain.QuestionQuery {
	return domain.QuestionQuery{
		ExamType:   q.ExamType,
		Difficulty: domain.Difficulty(q.Difficulty),
		Category:   q.Category,
		Limit:      q.Limit,
	}
}

type answerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

type resultAnswerRequest struct {
	QuestionID     string  `json:"questionId" validate:"required"`
	SelectedAnswer *string `json:"selectedAnswer"`
	Correct        bool    `json:"correct"`
}

type resultRequest struct {
	ExamID           string                `json:"examId" validate:"required"`
	TotalQuestions   int                   `json:"totalQuestions" validate:"gt=0"`
	CorrectAnswers   int                   `json:"correctAnswers" validate:"gte=0,ltefield=TotalQuestions"`
	IncorrectAnswers int                   `json:"incorrectAnswers" validate:"gte=0"`
	Score            int                   `json:"score" validate:"gte=0,lte=100"`
	TimeSpent        int                   `json:"timeSpent" validate:"gte=0"`
	Answers          []resultAnswerRequest `json:"answers" validate:"dive"`
}

type submitResponse struct {
	domain.SubmitOutcome
	ResultQuery string `json:"resultQuery,omitempty"`
}

type nextResponse struct {
	Session domain.SessionView `json:"session"`
	Submit  *submitResponse    `json:"submit,omitempty"`
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseQuestionsRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	questions, err := h.service.Questions(r.Context(), req.toQuery())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) recordResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	learner := LearnerFrom(r.Context())
	result := domain.Result{
		ExamID:           req.ExamID,
		LearnerID:        learner.UserID,
		Guest:            learner.IsGuest(),
		TotalQuestions:   req.TotalQuestions,
		CorrectAnswers:   req.CorrectAnswers,
		IncorrectAnswers: req.IncorrectAnswers,
		Score:            req.Score,
		TimeSpent:        req.TimeSpent,
		Answers:          make([]domain.AnswerRecord, 0, len(req.Answers)),
	}
	for _, a := range req.Answers {
		result.Answers = append(result.Answers, domain.AnswerRecord{
			QuestionID:     a.QuestionID,
			SelectedAnswer: a.SelectedAnswer,
			Correct:        a.Correct,
		})
	}
	stored, err := h.service.RecordResult(r.Context(), result)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, stored)
}

func (h *Handler) getResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Result(r.Context(), chi.URLParam(r, "resultID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req questionsRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	view, err := h.service.Start(r.Context(), LearnerFrom(r.Context()), req.toQuery())
	if err != nil {
		writeError(w, err)
		return
	}
	if view.GuestID != "" {
		w.Header().Set(GuestHeader, view.GuestID)
	}
	status := http.StatusCreated
	if view.Phase == domain.PhaseNoQuestions {
		status = http.StatusOK
	}
	writeJSON(w, status, view)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, h.service.Session, r)
}

func (h *Handler) abandonSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Abandon(ctx, LearnerFrom(ctx), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) selectAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	h.respondView(w, func(ctx context.Context, caller domain.Learner, id string) (domain.SessionView, error) {
		return h.service.SelectAnswer(ctx, caller, id, req.Answer)
	}, r)
}

func (h *Handler) next(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, outcome, err := h.service.Next(ctx, LearnerFrom(ctx), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := nextResponse{Session: view}
	if outcome != nil {
		sr := newSubmitResponse(*outcome)
		resp.Submit = &sr
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) previous(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, h.service.Previous, r)
}

func (h *Handler) toggleBookmark(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, h.service.ToggleBookmark, r)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	outcome, err := h.service.Submit(ctx, LearnerFrom(ctx), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSubmitResponse(outcome))
}

func (h *Handler) guestQuota(w http.ResponseWriter, r *http.Request) {
	learner := LearnerFrom(r.Context())
	if !learner.IsGuest() {
		writeJSON(w, http.StatusOK, domain.GuestAllowance{Allowed: true})
		return
	}
	if learner.GuestID == "" {
		writeError(w, validationError("missing "+GuestHeader))
		return
	}
	writeJSON(w, http.StatusOK, h.service.GuestAllowance(r.Context(), learner.GuestID))
}

func (h *Handler) claimGuest(w http.ResponseWriter, r *http.Request) {
	learner := LearnerFrom(r.Context())
	if err := h.service.ClaimGuest(r.Context(), learner, learner.GuestID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondView runs a session operation on behalf of the identified caller.
func (h *Handler) respondView(w http.ResponseWriter, fn func(context.Context, domain.Learner, string) (domain.SessionView, error), r *http.Request) {
	ctx := r.Context()
	view, err := fn(ctx, LearnerFrom(ctx), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) parseQuestionsRequest(r *http.Request) (questionsRequest, error) {
	q := r.URL.Query()
	req := questionsRequest{
		ExamType:   q.Get("examType"),
		Difficulty: q.Get("difficulty"),
		Category:   q.Get("category"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return req, validationError("limit must be an integer")
		}
		req.Limit = limit
	}
	if err := h.validate.Struct(req); err != nil {
		return req, validationError(err.Error())
	}
	return req, nil
}

func (h *Handler) decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return validationError("bad json")
	}
	if err := h.validate.Struct(v); err != nil {
		return validationError(err.Error())
	}
	return nil
}

func newSubmitResponse(outcome domain.SubmitOutcome) submitResponse {
	resp := submitResponse{SubmitOutcome: outcome}
	if outcome.Result != nil {
		resp.ResultQuery = outcome.Result.QueryParams().Encode()
	}
	return resp
}

type validationError string

func (e validationError) Error() string { return string(e) }

type errorPayload struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	var verr validationError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &verr), errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, domain.ErrOptionNotFound):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrResultNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAnswerLocked), errors.Is(err, domain.ErrSessionClosed), errors.Is(err, domain.ErrNoQuestions):
		status = http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, errorPayload{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
