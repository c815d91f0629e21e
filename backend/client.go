// Package backend talks to the restaurant billing server.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/navaneethdubbaka/Food-Engine/config"
	"github.com/navaneethdubbaka/Food-Engine/models"

	"go.uber.org/zap"
)

// StatusError is returned when the backend answers a read with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func New(cfg config.APIConfig, log *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log,
	}
}

// NewWithHTTPClient is used by tests to point the client at an httptest server.
func NewWithHTTPClient(baseURL string, hc *http.Client, log *zap.Logger) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc, log: log}
}

func (c *Client) MenuItemsByCategory(ctx context.Context, category string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := c.getJSON(ctx, "/api/menu_items/"+url.PathEscape(category), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) AllMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := c.getJSON(ctx, "/api/all_menu_items", &items); err != nil {
		return nil, err
	}
	return items, nil
}

type wireLineItem struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
	Image    string      `json:"image"`
}

// GenerateBill submits the cart. A decoded {success:false} is not an error.
func (c *Client) GenerateBill(ctx context.Context, items []models.LineItem) (models.BillResult, error) {
	body := struct {
		Items []wireLineItem `json:"items"`
	}{Items: make([]wireLineItem, len(items))}
	for i, it := range items {
		body.Items[i] = wireLineItem{
			ID:       it.ItemID,
			Name:     it.Name,
			Price:    json.Number(it.Price.String()),
			Quantity: it.Quantity,
			Image:    it.Image,
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return models.BillResult{}, fmt.Errorf("marshal bill: %w", err)
	}

	var res models.BillResult
	if err := c.doResult(ctx, http.MethodPost, "/api/generate_bill", "application/json", bytes.NewReader(payload), &res); err != nil {
		return models.BillResult{}, err
	}
	return res, nil
}

// flexString accepts a JSON string, number or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type wireSettings struct {
	TaxRate           flexString `json:"tax_rate"`
	ServiceChargeRate flexString `json:"service_charge_rate"`
	RestaurantName    flexString `json:"restaurant_name"`
	RestaurantAddress flexString `json:"restaurant_address"`
	RestaurantPhone   flexString `json:"restaurant_phone"`
}

// Settings reads /api/settings, falling back to /api/get_settings on 404.
func (c *Client) Settings(ctx context.Context) (models.Settings, error) {
	var ws wireSettings
	err := c.getJSON(ctx, "/api/settings", &ws)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		err = c.getJSON(ctx, "/api/get_settings", &ws)
	}
	if err != nil {
		return models.Settings{}, err
	}
	return models.Settings{
		TaxRate:           string(ws.TaxRate),
		ServiceChargeRate: string(ws.ServiceChargeRate),
		RestaurantName:    string(ws.RestaurantName),
		RestaurantAddress: string(ws.RestaurantAddress),
		RestaurantPhone:   string(ws.RestaurantPhone),
	}, nil
}

// UpdateSettings posts the non-empty fields of s to /api/update_settings;
// empty fields keep their stored value.
func (c *Client) UpdateSettings(ctx context.Context, s models.Settings) (models.ActionResult, error) {
	body := struct {
		TaxRate           string `json:"tax_rate,omitempty"`
		ServiceChargeRate string `json:"service_charge_rate,omitempty"`
		RestaurantName    string `json:"restaurant_name,omitempty"`
		RestaurantAddress string `json:"restaurant_address,omitempty"`
		RestaurantPhone   string `json:"restaurant_phone,omitempty"`
	}{s.TaxRate, s.ServiceChargeRate, s.RestaurantName, s.RestaurantAddress, s.RestaurantPhone}
	payload, err := json.Marshal(body)
	if err != nil {
		return models.ActionResult{}, fmt.Errorf("marshal settings: %w", err)
	}

	var res models.ActionResult
	err = c.doResult(ctx, http.MethodPost, "/api/update_settings", "application/json", bytes.NewReader(payload), &res)
	return res, err
}

func (c *Client) AddMenuItem(ctx context.Context, form models.MenuItemForm) (models.ActionResult, error) {
	return c.submitForm(ctx, "/api/add_menu_item", form)
}

func (c *Client) UpdateMenuItem(ctx context.Context, id int64, form models.MenuItemForm) (models.ActionResult, error) {
	return c.submitForm(ctx, "/api/update_menu_item/"+strconv.FormatInt(id, 10), form)
}

func (c *Client) DeleteMenuItem(ctx context.Context, id int64) (models.ActionResult, error) {
	var res models.ActionResult
	err := c.doResult(ctx, http.MethodDelete, "/api/delete_menu_item/"+strconv.FormatInt(id, 10), "", nil, &res)
	return res, err
}

// submitForm posts url-encoded fields, or multipart when an image is attached.
func (c *Client) submitForm(ctx context.Context, p string, form models.MenuItemForm) (models.ActionResult, error) {
	fields := url.Values{}
	fields.Set("name", form.Name)
	fields.Set("category", form.Category)
	fields.Set("price", form.Price.String())
	fields.Set("description", form.Description)

	var (
		body        io.Reader
		contentType string
	)
	if form.Image != nil {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for k := range fields {
			if err := mw.WriteField(k, fields.Get(k)); err != nil {
				return models.ActionResult{}, fmt.Errorf("write field %s: %w", k, err)
			}
		}
		fw, err := mw.CreateFormFile("image", path.Base(form.ImageName))
		if err != nil {
			return models.ActionResult{}, fmt.Errorf("create image part: %w", err)
		}
		if _, err := io.Copy(fw, form.Image); err != nil {
			return models.ActionResult{}, fmt.Errorf("copy image: %w", err)
		}
		if err := mw.Close(); err != nil {
			return models.ActionResult{}, fmt.Errorf("close multipart: %w", err)
		}
		body, contentType = &buf, mw.FormDataContentType()
	} else {
		body, contentType = strings.NewReader(fields.Encode()), "application/x-www-form-urlencoded"
	}

	var res models.ActionResult
	err := c.doResult(ctx, http.MethodPost, p, contentType, body, &res)
	return res, err
}

func (c *Client) getJSON(ctx context.Context, p string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+p, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", p, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Method: http.MethodGet, Path: p, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", p, err)
	}
	return nil
}

// doResult sends a mutation whose answer is a {success, message} envelope.
// The backend reports logical failures in the body, sometimes with a 4xx/5xx
// status, so the body is decoded whenever it is JSON.
func (c *Client) doResult(ctx context.Context, method, p, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, p, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &StatusError{Method: method, Path: p, Code: resp.StatusCode}
		}
		return fmt.Errorf("decode %s: %w", p, err)
	}
	c.log.Debug("backend call", zap.String("method", method), zap.String("path", p), zap.Int("status", resp.StatusCode))
	return nil
}
