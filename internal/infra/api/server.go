package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/AlexJaimeH/narra-sub000/internal/domain"
	"github.com/AlexJaimeH/narra-sub000/internal/infra/logging"
	"github.com/AlexJaimeH/narra-sub000/internal/infra/metrics"
	rds "github.com/AlexJaimeH/narra-sub000/internal/infra/redis"
	"github.com/AlexJaimeH/narra-sub000/internal/usecase"
)

// Server wires the acquisition endpoints to their use cases.
type Server struct {
	checkoutUC usecase.CheckoutUseCase
	provUC     usecase.ProvisionUseCase
	giftUC     usecase.GiftUseCase
	accessUC   usecase.AccessUseCase
	limiter    *rds.RateLimiter // optional
	apiKey     string
	log        *zerolog.Logger
}

func NewServer(
	checkoutUC usecase.CheckoutUseCase,
	provUC usecase.ProvisionUseCase,
	giftUC usecase.GiftUseCase,
	accessUC usecase.AccessUseCase,
	limiter *rds.RateLimiter,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		checkoutUC: checkoutUC,
		provUC:     provUC,
		giftUC:     giftUC,
		accessUC:   accessUC,
		limiter:    limiter,
		apiKey:     apiKey,
		log:        logger,
	}
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID())
	r.Use(Recover(s.log))
	r.Use(RequestLog(s.log))
	r.Use(RequireJSON())

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/verify-checkout", s.handleVerifyCheckout)

	r.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey, s.log))
		r.Post("/provision-account", s.handleProvisionAccount)
	})

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(s.limiter, 30, time.Minute, s.log))
		r.Post("/gift-later/request", s.handleGiftRequest)
		r.Get("/gift-later/validate", s.handleGiftValidate)
		r.Post("/gift-later/activate", s.handleGiftActivate)
		r.Post("/subscriber-access", s.handleSubscriberAccess)
	})

	return r
}

type verifyRequest struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) handleVerifyCheckout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.VerifyRequests.WithLabelValues("fail", "bad_json").Inc()
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := logging.WithSessionRef(r.Context(), req.SessionID)
	result, err := s.checkoutUC.Verify(ctx, req.SessionID)
	if err != nil {
		metrics.VerifyRequests.WithLabelValues("fail", verifyFailReason(err)).Inc()
		metrics.VerifyDuration.WithLabelValues("fail").Observe(time.Since(start).Seconds())
		respondDomainError(w, err)
		return
	}

	metrics.VerifyRequests.WithLabelValues("ok", "").Inc()
	metrics.VerifyDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	resp := map[string]interface{}{
		"success": true,
		"type":    string(result.Variant),
		"message": result.Message,
	}
	if result.AlreadyProcessed {
		resp["alreadyProcessed"] = true
	}
	respondJSON(w, http.StatusOK, resp)
}

func verifyFailReason(err error) string {
	var payErr *domain.PaymentStateError
	switch {
	case errors.As(err, &payErr):
		return "not_paid"
	case errors.Is(err, domain.ErrLocked):
		return "locked"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "bad_metadata"
	case errors.Is(err, domain.ErrEmailAlreadyRegistered):
		return "backend_error"
	default:
		return "unknown"
	}
}

type provisionRequest struct {
	PurchaseType string `json:"purchaseType"`
	AuthorEmail  string `json:"authorEmail"`
	AuthorName   string `json:"authorName"`
	BuyerEmail   string `json:"buyerEmail"`
}

func (s *Server) handleProvisionAccount(w http.ResponseWriter, r *http.Request) {
	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := s.provUC.ProvisionManual(r.Context(), req.PurchaseType, req.AuthorEmail, req.AuthorName, req.BuyerEmail)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "userId": userID})
}

type giftRequestBody struct {
	BuyerEmail string `json:"buyerEmail"`
	BuyerName  string `json:"buyerName"`
}

func (s *Server) handleGiftRequest(w http.ResponseWriter, r *http.Request) {
	var req giftRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.giftUC.Reserve(r.Context(), req.BuyerEmail, req.BuyerName, nil); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "activation link sent",
	})
}

func (s *Server) handleGiftValidate(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"valid": false, "error": "missing token"})
		return
	}

	req, err := s.giftUC.Validate(r.Context(), token)
	if err != nil {
		status := http.StatusNotFound
		msg := "activation token not found"
		if errors.Is(err, domain.ErrTokenAlreadyUsed) {
			status = http.StatusConflict
			msg = "activation token already used"
		} else if !errors.Is(err, domain.ErrTokenNotFound) {
			status = http.StatusInternalServerError
			msg = "internal error"
		}
		respondJSON(w, status, map[string]interface{}{"valid": false, "error": msg})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"valid":      true,
		"buyerEmail": req.BuyerEmail,
	})
}

type giftActivateRequest struct {
	Token       string `json:"token"`
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail"`
	BuyerName   string `json:"buyerName"`
	GiftMessage string `json:"giftMessage"`
}

func (s *Server) handleGiftActivate(w http.ResponseWriter, r *http.Request) {
	var req giftActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := s.giftUC.Activate(r.Context(), usecase.ActivateInput{
		Token:       req.Token,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		BuyerName:   req.BuyerName,
		GiftMessage: req.GiftMessage,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "userId": userID})
}

type subscriberAccessRequest struct {
	AuthorID     string  `json:"authorId"`
	SubscriberID string  `json:"subscriberId"`
	Token        string  `json:"token"`
	StoryID      *string `json:"storyId"`
	Source       string  `json:"source"`
	EventType    string  `json:"eventType"`
}

func (s *Server) handleSubscriberAccess(w http.ResponseWriter, r *http.Request) {
	var req subscriberAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grant, err := s.accessUC.Validate(r.Context(), usecase.AccessInput{
		AuthorID:     req.AuthorID,
		SubscriberID: req.SubscriberID,
		Token:        req.Token,
		StoryID:      req.StoryID,
		Source:       req.Source,
		EventType:    req.EventType,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"grantedAt": grant.GrantedAt.Format(time.RFC3339),
		"token":     req.Token,
		"source":    req.Source,
		"subscriber": map[string]interface{}{
			"id":     grant.Subscriber.ID,
			"name":   grant.Subscriber.Name,
			"email":  grant.Subscriber.Email,
			"status": string(grant.Subscriber.Status),
		},
	})
}
