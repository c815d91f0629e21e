package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/navaneethdubbaka/Food-Engine/lang"
	"github.com/navaneethdubbaka/Food-Engine/models"
	"github.com/navaneethdubbaka/Food-Engine/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// --- Request / Response types ---

type createSessionRequest struct {
	Terminal string `json:"terminal"`
}

type addItemRequest struct {
	ID int64 `json:"id"`
}

// Quantity is kept raw so "3", 3 and "abc" all reach the clamping rule.
type setQuantityRequest struct {
	Quantity json.RawMessage `json:"quantity"`
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

type languageRequest struct {
	Language string `json:"language"`
}

type categoryResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type menuItemResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

type lineResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
	Image     string `json:"image,omitempty"`
}

type noticeResponse struct {
	Level string `json:"level"`
	Text  string `json:"text"`
	TTLMs int64  `json:"ttl_ms"`
}

type billResponse struct {
	Items             []lineResponse  `json:"items"`
	Subtotal          string          `json:"subtotal"`
	TaxRate           string          `json:"tax_rate"`
	TaxAmount         string          `json:"tax_amount"`
	ServiceChargeRate string          `json:"service_charge_rate"`
	ServiceCharge     string          `json:"service_charge"`
	Total             string          `json:"total"`
	Currency          string          `json:"currency"`
	RatesLoaded       bool            `json:"rates_loaded"`
	BillNumber        string          `json:"bill_number,omitempty"`
	Notice            *noticeResponse `json:"notice,omitempty"`
}

type settingsResponse struct {
	RestaurantName    string       `json:"restaurant_name"`
	RestaurantAddress string       `json:"restaurant_address"`
	RestaurantPhone   string       `json:"restaurant_phone"`
	Bill              billResponse `json:"bill"`
}

// --- Catalog ---

func (s *Server) Categories(w http.ResponseWriter, r *http.Request) {
	l := lang.Normalize(r.URL.Query().Get("lang"))
	out := make([]categoryResponse, 0, len(models.Categories))
	for _, cat := range models.Categories {
		out = append(out, categoryResponse{ID: cat, Label: lang.CategoryLabel(l, cat)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) CategoryItems(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if !models.ValidCategory(category) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown category"})
		return
	}
	items, err := s.deps.Catalog.ByCategory(r.Context(), category)
	if err != nil {
		l := lang.Normalize(r.URL.Query().Get("lang"))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": lang.T(l, "alert.menu_load_error")})
		return
	}
	writeJSON(w, http.StatusOK, toMenuItems(items))
}

func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toMenuItems(s.deps.Catalog.Search(r.URL.Query().Get("q"))))
}

func (s *Server) Strings(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "locale")
	if !lang.Valid(code) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unsupported locale"})
		return
	}
	writeJSON(w, http.StatusOK, lang.Table(code))
}

// --- Sessions ---

func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}
	id, sess, err := s.newSession(r.Context(), strings.TrimSpace(req.Terminal))
	if err != nil {
		s.log.Warn("create session", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	if _, err := sess.reg.LoadSettings(r.Context()); err != nil {
		s.log.Warn("session settings", zap.String("session", id.String()), zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session":  id.String(),
		"language": sess.locale(),
		"bill":     s.bill(sess, sess.reg.Summary(), services.Notice{}),
	})
}

func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	if !s.closeSession(r) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) GetBill(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.bill(sess, sess.reg.Summary(), services.Notice{}))
}

func (s *Server) AddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sum, n := sess.reg.AddByID(req.ID)
	status := http.StatusOK
	if n.Level == services.LevelWarning {
		status = http.StatusNotFound
	}
	writeJSON(w, status, s.bill(sess, sum, n))
}

func (s *Server) SetQuantity(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sum := sess.reg.SetQuantity(id, rawQuantity(req.Quantity))
	writeJSON(w, http.StatusOK, s.bill(sess, sum, services.Notice{}))
}

func (s *Server) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, s.bill(sess, sess.reg.AdjustQuantity(id, req.Delta), services.Notice{}))
}

func (s *Server) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	sum, n := sess.reg.Remove(id)
	writeJSON(w, http.StatusOK, s.bill(sess, sum, n))
}

func (s *Server) ClearBill(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	sum, n := sess.reg.Clear()
	writeJSON(w, http.StatusOK, s.bill(sess, sum, n))
}

func (s *Server) SubmitBill(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	sub := sess.reg.Submit(r.Context())
	resp := s.bill(sess, sub.Summary, sub.Notice)
	resp.BillNumber = sub.BillNumber

	status := http.StatusOK
	switch sub.Notice.Level {
	case services.LevelWarning:
		status = http.StatusUnprocessableEntity
	case services.LevelDanger:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

func (s *Server) ReloadSettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	sum, err := sess.reg.LoadSettings(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, settingsResponse{
			Bill: s.bill(sess, sum, services.Notice{Level: services.LevelDanger, Key: "alert.settings_error"}),
		})
		return
	}
	st := sess.reg.Settings()
	writeJSON(w, http.StatusOK, settingsResponse{
		RestaurantName:    st.RestaurantName,
		RestaurantAddress: st.RestaurantAddress,
		RestaurantPhone:   st.RestaurantPhone,
		Bill:              s.bill(sess, sum, services.Notice{Level: services.LevelInfo, Key: "alert.settings_loaded"}),
	})
}

func (s *Server) GetLanguage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"language": sess.locale()})
}

func (s *Server) SetLanguage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	var req languageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !lang.Valid(req.Language) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported language"})
		return
	}
	sess.setLocale(req.Language)
	if err := s.deps.Prefs.SetLanguage(r.Context(), sess.reg.Terminal(), req.Language); err != nil {
		s.log.Warn("save language", zap.String("terminal", sess.reg.Terminal()), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]string{"language": req.Language})
}

// --- helpers ---

func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, ok := s.session(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return sess, true
}

func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return 0, false
	}
	return id, true
}

func rawQuantity(raw json.RawMessage) string {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return string(raw)
}

func (s *Server) bill(sess *session, sum services.Summary, n services.Notice) billResponse {
	cur := s.cfg.Display.Currency
	resp := billResponse{
		Items:             make([]lineResponse, 0, len(sum.Lines)),
		Subtotal:          sum.Totals.Subtotal.StringFixed(2),
		TaxRate:           sum.Rates.TaxRatePercent.String(),
		TaxAmount:         sum.Totals.TaxAmount.StringFixed(2),
		ServiceChargeRate: sum.Rates.ServiceChargeRatePercent.String(),
		ServiceCharge:     sum.Totals.ServiceChargeAmount.StringFixed(2),
		Total:             sum.Totals.GrandTotal.StringFixed(2),
		Currency:          cur,
		RatesLoaded:       sum.RatesLoaded,
	}
	for _, li := range sum.Lines {
		resp.Items = append(resp.Items, lineResponse{
			ID:        li.ItemID,
			Name:      li.Name,
			Price:     li.Price.StringFixed(2),
			Quantity:  li.Quantity,
			LineTotal: li.LineTotal().StringFixed(2),
			Image:     li.Image,
		})
	}
	if !n.IsZero() {
		resp.Notice = &noticeResponse{
			Level: string(n.Level),
			Text:  n.Text(sess.locale()),
			TTLMs: s.cfg.Display.NoticeTTL.Milliseconds(),
		}
	}
	return resp
}

func toMenuItems(items []models.MenuItem) []menuItemResponse {
	out := make([]menuItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, menuItemResponse{
			ID:          it.ID,
			Name:        it.Name,
			Category:    it.Category,
			Price:       it.Price.StringFixed(2),
			Description: it.Description,
			Image:       it.Image,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
