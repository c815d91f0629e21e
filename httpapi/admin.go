package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/navaneethdubbaka/Food-Engine/lang"
	"github.com/navaneethdubbaka/Food-Engine/models"
	"github.com/navaneethdubbaka/Food-Engine/services"

	"github.com/shopspring/decimal"
)

const (
	adminKeyHeader = "X-Admin-Key"
	maxImageBytes  = 10 << 20
)

type settingsBody struct {
	TaxRate           string `json:"tax_rate"`
	ServiceChargeRate string `json:"service_charge_rate"`
	RestaurantName    string `json:"restaurant_name"`
	RestaurantAddress string `json:"restaurant_address"`
	RestaurantPhone   string `json:"restaurant_phone"`
}

type adminResponse struct {
	Notice noticeResponse `json:"notice"`
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(adminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.HTTP.AdminKey)) != 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "admin key required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AddMenuItem takes the add form as url-encoded or multipart fields, with an
// optional "image" file.
func (s *Server) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	form, cleanup, ok := menuForm(w, r)
	if !ok {
		return
	}
	defer cleanup()
	s.writeNotice(w, r, s.deps.Menu.Add(r.Context(), form))
}

func (s *Server) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	form, cleanup, ok := menuForm(w, r)
	if !ok {
		return
	}
	defer cleanup()
	s.writeNotice(w, r, s.deps.Menu.Update(r.Context(), id, form))
}

func (s *Server) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	s.writeNotice(w, r, s.deps.Menu.Delete(r.Context(), id))
}

func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Menu.Settings(r.Context())
	if err != nil {
		s.writeNotice(w, r, services.Notice{Level: services.LevelDanger, Key: "alert.settings_error"})
		return
	}
	writeJSON(w, http.StatusOK, settingsBody{
		TaxRate:           st.TaxRate,
		ServiceChargeRate: st.ServiceChargeRate,
		RestaurantName:    st.RestaurantName,
		RestaurantAddress: st.RestaurantAddress,
		RestaurantPhone:   st.RestaurantPhone,
	})
}

// UpdateSettings changes the non-empty fields of the body.
func (s *Server) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	s.writeNotice(w, r, s.deps.Menu.UpdateSettings(r.Context(), models.Settings{
		TaxRate:           req.TaxRate,
		ServiceChargeRate: req.ServiceChargeRate,
		RestaurantName:    req.RestaurantName,
		RestaurantAddress: req.RestaurantAddress,
		RestaurantPhone:   req.RestaurantPhone,
	}))
}

func menuForm(w http.ResponseWriter, r *http.Request) (models.MenuItemForm, func(), bool) {
	nop := func() {}
	if err := r.ParseMultipartForm(maxImageBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return models.MenuItemForm{}, nop, false
	}
	price, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("price")))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return models.MenuItemForm{}, nop, false
	}
	form := models.MenuItemForm{
		Name:        r.FormValue("name"),
		Category:    r.FormValue("category"),
		Price:       price,
		Description: r.FormValue("description"),
	}

	file, hdr, err := r.FormFile("image")
	switch {
	case err == nil:
		form.Image, form.ImageName = file, hdr.Filename
		return form, func() { file.Close() }, true
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return form, nop, true
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid image"})
		return models.MenuItemForm{}, nop, false
	}
}

func (s *Server) writeNotice(w http.ResponseWriter, r *http.Request, n services.Notice) {
	status := http.StatusOK
	switch n.Level {
	case services.LevelWarning:
		status = http.StatusUnprocessableEntity
	case services.LevelDanger:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, adminResponse{Notice: noticeResponse{
		Level: string(n.Level),
		Text:  n.Text(lang.Normalize(r.URL.Query().Get("lang"))),
		TTLMs: s.cfg.Display.NoticeTTL.Milliseconds(),
	}})
}
