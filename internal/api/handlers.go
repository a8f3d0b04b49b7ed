package pricing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	interf "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/interfaces"
	models "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/models"
	service "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/services"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type PricingHandler struct {
	router   *mux.Router
	bookings *service.BookingService
	settings *service.SettingsService
	rules    interf.RuleStorage
	engine   *service.RuleEngine
	penalty  *service.PenaltyCalculator
	logger   *zap.Logger
}

func NewHandler(bookings *service.BookingService, settings *service.SettingsService, rules interf.RuleStorage, logger *zap.Logger) *PricingHandler {
	router := mux.NewRouter()
	handler := &PricingHandler{
		router:   router,
		bookings: bookings,
		settings: settings,
		rules:    rules,
		engine:   service.NewRuleEngine(logger),
		penalty:  service.NewPenaltyCalculator(),
		logger:   logger,
	}
	router.Use(MiddlewareLog())

	// booking workflow
	router.HandleFunc("/quote", handler.QuoteHandler).Methods(http.MethodPost)
	router.HandleFunc("/bookings", handler.CreateBookingHandler).Methods(http.MethodPost)
	router.HandleFunc("/bookings/{id}", handler.GetBookingHandler).Methods(http.MethodGet)
	router.HandleFunc("/bookings/{id}/return", handler.ReturnHandler).Methods(http.MethodPost)

	// penalties
	router.HandleFunc("/penalties/damage", handler.DamagePenaltyHandler).Methods(http.MethodPost)
	router.HandleFunc("/penalties/late", handler.LatePenaltyHandler).Methods(http.MethodPost)
	router.HandleFunc("/penalties/total", handler.TotalPenaltyHandler).Methods(http.MethodPost)

	// rules
	router.HandleFunc("/rules", handler.GetActiveRulesHandler).Methods(http.MethodGet)
	router.HandleFunc("/rules/all", handler.GetAllRulesHandler).Methods(http.MethodGet)
	router.HandleFunc("/rules/preview", handler.PreviewHandler).Methods(http.MethodPost)
	router.HandleFunc("/rule/{id}", handler.GetRuleHandler).Methods(http.MethodGet)
	router.HandleFunc("/rule/{id}", handler.DeleteRuleHandler).Methods(http.MethodDelete)
	router.HandleFunc("/rule", handler.SaveRuleHandler).Methods(http.MethodPost)

	// settings
	router.HandleFunc("/settings", handler.GetSettingsHandler).Methods(http.MethodGet)
	router.HandleFunc("/settings", handler.UpdateSettingsHandler).Methods(http.MethodPut)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return handler
}

func (r *PricingHandler) ServeHTTP(w http.ResponseWriter, res *http.Request) {
	r.router.ServeHTTP(w, res)
}

func (r *PricingHandler) Log(msg string, service string, err error) {
	r.logger.Error(msg,
		zap.String("service", service),
		zap.Error(err),
	)
}

func (r *PricingHandler) readJSON(req *http.Request, v any) error {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	defer req.Body.Close()
	return json.Unmarshal(body, v)
}

func (r *PricingHandler) writeJSON(w http.ResponseWriter, service string, status int, v any) {
	j, err := json.Marshal(v)
	if err != nil {
		r.Log("Marshal", service, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(j)
}

// writeError maps service errors to status codes.
func (r *PricingHandler) writeError(w http.ResponseWriter, service string, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrAlreadyReturned):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		r.Log("Service", service, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pathID(req *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(req)["id"])
}

func (r *PricingHandler) QuoteHandler(w http.ResponseWriter, req *http.Request) {
	var quote models.QuoteRequest
	if err := r.readJSON(req, &quote); err != nil {
		http.Error(w, "Body is not correct", http.StatusBadRequest)
		return
	}
	snapshot, err := r.bookings.Quote(req.Context(), quote)
	if err != nil {
		r.writeError(w, "QuoteHandler", err)
		return
	}
	r.writeJSON(w, "QuoteHandler", http.StatusOK, snapshot)
}

func (r *PricingHandler) CreateBookingHandler(w http.ResponseWriter, req *http.Request) {
	var quote models.QuoteRequest
	if err := r.readJSON(req, &quote); err != nil {
		http.Error(w, "Body is not correct", http.StatusBadRequest)
		return
	}
	booking, err := r.bookings.CreateBooking(req.Context(), quote)
	if err != nil {
		r.writeError(w, "CreateBookingHandler", err)
		return
	}
	r.writeJSON(w, "CreateBookingHandler", http.StatusCreated, booking)
}

func (r *PricingHandler) GetBookingHandler(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		http.Error(w, "Booking not found", http.StatusNotFound)
		return
	}
	booking, err := r.bookings.GetBooking(req.Context(), id)
	if err != nil {
		r.writeError(w, "GetBookingHandler", err)
		return
	}
	r.writeJSON(w, "GetBookingHandler", http.StatusOK, booking)
}

func (r *PricingHandler) ReturnHandler(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		http.Error(w, "Booking not found", http.StatusNotFound)
		return
	}
	var ret models.ReturnRequest
	if err := r.readJSON(req, &ret); err != nil {
		http.Error(w, "Body is not correct", http.StatusBadRequest)
		return
	}
	ret.BookingID = id
	booking, err := r.bookings.ProcessReturn(req.Context(), ret)
	if err != nil {
		r.writeError(w, "ReturnHandler", err)
		return
	}
	r.writeJSON(w, "ReturnHandler", http.StatusOK, booking)
}

type DamagePenaltyRequest struct {
	Deposit     float64                 `json:"deposit"`
	DamageLevel string                  `json:"damageLevel"`
	Settings    *models.PenaltySettings `json:"settings,omitempty"`
}

type LatePenaltyRequest struct {
	ExpectedReturnDate time.Time               `json:"expectedReturnDate"`
	ActualReturnDate   time.Time               `json:"actualReturnDate"`
	Deposit            float64                 `json:"deposit"`
	Settings           *models.PenaltySettings `json:"settings,omitempty"`
}

type TotalPenaltyRequest struct {
	DamagePenalty *models.PenaltyResult `json:"damagePenalty,omitempty"`
	LatePenalty   *models.PenaltyResult `json:"latePenalty,omitempty"`
}

type TotalPenaltyResponse struct {
	Total float64 `json:"total"`
}

// settings from the request body, otherwise the stored ones
func (r *PricingHandler) penaltySettings(req *http.Request, given *models.PenaltySettings) (models.PenaltySettings, error) {
	if given != nil {
		return *given, nil
	}
	return r.settings.Get(req.Context())
}

func (r *PricingHandler) DamagePenaltyHandler(w http.ResponseWriter, req *http.Request) {
	var in DamagePenaltyRequest
	if err := r.readJSON(req, &in); err != nil {
		http.Error(w, "Body is not correct", http.StatusBadRequest)
		return
	}
	settings, err := r.penaltySettings(req, in.Settings)
	if err != nil {
		r.writeError(w, "DamagePenaltyHandler", err)
		return
	}
	result := r.penalty.CalculateDamagePenalty(in.Deposit, in.DamageLevel, settings)
	r.writeJSON(w, "DamagePenaltyHandler", http.StatusOK, result)
}

func (r *PricingHandler) LatePenaltyHandler(w http.ResponseWriter, req *http.Request) {
	var in LatePenaltyRequest
	if err := r.readJSON(req, &in); err != nil {
		http.Error(w, "Body is not correct", http.StatusBadRequest)
		return
	}
	settings, err := r.penaltySettings(req, in.Settings)
	if err != nil {
		r.writeError(w, "LatePenaltyHandler", err)
		return
	}
	result := r.penalty.CalculateLatePenalty(in.ExpectedReturnDate, in.ActualReturnDate, in.Deposit, settings)
	r.writeJSON(w, "LatePenaltyHandler", http.StatusOK, result)
}

func (r *PricingHandler) TotalPenaltyHandler(w http.ResponseWriter, req *http.Request) {
	var in TotalPenaltyRequest
	if err := r.readJSON(req, &in); err != nil {
		http.Error(w, "Body is not correct", http.StatusBadRequest)
		return
	}
	total := service.CalculateTotalPenalty(in.DamagePenalty, in.LatePenalty)
	r.writeJSON(w, "TotalPenaltyHandler", http.StatusOK, TotalPenaltyResponse{total})
}

type PreviewRequest struct {
	BaseRates models.BaseRates      `json:"baseRates"`
	Rules     []models.PriceRule    `json:"rules"`
	Context   models.BookingContext `json:"context"`
}

// PreviewHandler runs the engine on rules from the body; nothing is loaded or stored.
func (r *PricingHandler) PreviewHandler(w http.ResponseWriter, req *http.Request) {
	var in PreviewRequest
	if err := r.readJSON(req, &in); err != nil {
		http.Error(w, "Body is not correct", http.StatusBadRequest)
		return
	}
	snapshot := r.engine.ApplyPriceRules(in.BaseRates, in.Rules, in.Context)
	r.writeJSON(w, "PreviewHandler", http.StatusOK, snapshot)
}

// enabled rules for ?productId= and ?categoryId=, global rules included
func (r *PricingHandler) GetActiveRulesHandler(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	rules, err := r.rules.GetActiveRules(req.Context(), q.Get("productId"), q.Get("categoryId"))
	if err != nil {
		r.Log("DB get", "GetActiveRulesHandler", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	r.writeJSON(w, "GetActiveRulesHandler", http.StatusOK, rules)
}

func (r *PricingHandler) GetAllRulesHandler(w http.ResponseWriter, req *http.Request) {
	rules, err := r.rules.GetAllRules(req.Context())
	if err != nil {
		r.Log("DB get", "GetAllRulesHandler", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	r.writeJSON(w, "GetAllRulesHandler", http.StatusOK, rules)
}

func (r *PricingHandler) GetRuleHandler(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	rule, err := r.rules.GetRule(req.Context(), id)
	if err != nil {
		r.writeError(w, "GetRuleHandler", err)
		return
	}
	r.writeJSON(w, "GetRuleHandler", http.StatusOK, rule)
}

type SaveRuleResponse struct {
	RuleID uuid.UUID `json:"ruleId"`
}

// create or update a rule
func (r *PricingHandler) SaveRuleHandler(w http.ResponseWriter, req *http.Request) {
	rule := &models.PriceRule{}
	if err := r.readJSON(req, rule); err != nil {
		r.Log("Unmarshal", "SaveRuleHandler", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if rule.Name == "" || rule.Effect.Type == "" {
		http.Error(w, "name and effect.type are required", http.StatusBadRequest)
		return
	}
	id, err := r.rules.SaveRule(req.Context(), *rule)
	if err != nil {
		r.Log("SaveRule", "SaveRuleHandler", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	r.writeJSON(w, "SaveRuleHandler", http.StatusOK, SaveRuleResponse{id})
}

func (r *PricingHandler) DeleteRuleHandler(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err := r.rules.DeleteRule(req.Context(), id); err != nil {
		r.writeError(w, "DeleteRuleHandler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *PricingHandler) GetSettingsHandler(w http.ResponseWriter, req *http.Request) {
	settings, err := r.settings.Get(req.Context())
	if err != nil {
		r.writeError(w, "GetSettingsHandler", err)
		return
	}
	r.writeJSON(w, "GetSettingsHandler", http.StatusOK, settings)
}

func (r *PricingHandler) UpdateSettingsHandler(w http.ResponseWriter, req *http.Request) {
	var in models.PenaltySettings
	if err := r.readJSON(req, &in); err != nil {
		http.Error(w, "Body is not correct", http.StatusBadRequest)
		return
	}
	saved, err := r.settings.Update(req.Context(), in)
	if err != nil {
		r.writeError(w, "UpdateSettingsHandler", err)
		return
	}
	r.writeJSON(w, "UpdateSettingsHandler", http.StatusOK, saved)
}
