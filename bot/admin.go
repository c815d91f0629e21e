package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/navaneethdubbaka/Food-Engine/config"
	"github.com/navaneethdubbaka/Food-Engine/lang"
	"github.com/navaneethdubbaka/Food-Engine/models"
	"github.com/navaneethdubbaka/Food-Engine/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	stepCategory = "category"
	stepName     = "name"
	stepPrice    = "price"
	stepDesc     = "desc"
	stepPhoto    = "photo"

	stepTax         = "tax_rate"
	stepService     = "service_charge_rate"
	stepRestName    = "restaurant_name"
	stepRestAddress = "restaurant_address"
	stepRestPhone   = "restaurant_phone"
)

// settingsSteps is the order of the settings flow; label is the lang key
// of the field.
var settingsSteps = []struct{ step, label string }{
	{stepTax, "settings.tax_rate"},
	{stepService, "settings.service_charge_rate"},
	{stepRestName, "settings.restaurant_name"},
	{stepRestAddress, "settings.restaurant_address"},
	{stepRestPhone, "settings.restaurant_phone"},
}

const (
	cbAdmAdd    = "adm:add"
	cbAdmList   = "adm:list:"
	cbAdmCat    = "adm:cat:"
	cbAdmEdit   = "adm:edit:"
	cbAdmDelAsk = "adm:delask:"
	cbAdmDel    = "adm:del:"
	cbAdmCancel = "adm:cancel"
	cbAdmSet    = "adm:settings"
)

// adminFlow is an add (editID == 0), an edit or a settings update in progress.
type adminFlow struct {
	Step        string
	EditID      int64
	Category    string
	Name        string
	Price       decimal.Decimal
	Description string

	Current  models.Settings // shown as the value /skip keeps
	Settings models.Settings // changed fields only
}

// AdminBot manages the backend menu and settings (ADMIN_TOKEN). Only the
// ADMIN_ID user is served.
type AdminBot struct {
	api     *tgbotapi.BotAPI
	adminID int64
	locale  string
	menu    *services.MenuAdmin
	catalog *services.Catalog
	log     *zap.Logger
	http    *http.Client

	flows   map[int64]*adminFlow
	flowsMu sync.Mutex
}

func NewAdminBot(cfg *config.Config, menu *services.MenuAdmin, catalog *services.Catalog, log *zap.Logger) (*AdminBot, error) {
	if cfg.Telegram.AdminToken == "" {
		return nil, fmt.Errorf("ADMIN_TOKEN not set")
	}
	if cfg.Telegram.AdminID == 0 {
		return nil, fmt.Errorf("ADMIN_ID not set: the admin bot only serves its administrator")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.AdminToken)
	if err != nil {
		return nil, err
	}
	return &AdminBot{
		api:     api,
		adminID: cfg.Telegram.AdminID,
		locale:  lang.Normalize(cfg.Display.DefaultLocale),
		menu:    menu,
		catalog: catalog,
		log:     log.Named("admin_bot"),
		http:    &http.Client{Timeout: cfg.API.Timeout},
		flows:   make(map[int64]*adminFlow),
	}, nil
}

func (a *AdminBot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := a.api.GetUpdatesChan(u)
	a.log.Info("admin bot started", zap.String("username", a.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			a.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.CallbackQuery != nil {
				a.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			a.handleMessage(ctx, update.Message)
		}
	}
}

func (a *AdminBot) allowed(userID int64) bool {
	return a.adminID != 0 && userID == a.adminID
}

func (a *AdminBot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	if !a.allowed(userID) {
		a.send(chatID, lang.T(a.locale, "bot.admin_denied"))
		return
	}

	switch {
	case text == "/cancel":
		a.setFlow(userID, nil)
		a.send(chatID, lang.T(a.locale, "bot.cancelled"))
		a.sendPanel(chatID)
		return
	case text == "/start" || text == "/menu":
		a.setFlow(userID, nil)
		a.sendPanel(chatID)
		return
	case text == "/add":
		a.startFlow(chatID, userID, 0)
		return
	case text == "/settings":
		a.startSettings(ctx, chatID, userID)
		return
	case strings.HasPrefix(text, "/edit"):
		id, err := strconv.ParseInt(commandArg(text), 10, 64)
		if err != nil || id <= 0 {
			a.send(chatID, lang.T(a.locale, "bot.admin_usage"))
			return
		}
		a.startFlow(chatID, userID, id)
		return
	case strings.HasPrefix(text, "/delete"):
		id, err := strconv.ParseInt(commandArg(text), 10, 64)
		if err != nil || id <= 0 {
			a.send(chatID, lang.T(a.locale, "bot.admin_usage"))
			return
		}
		a.askDelete(chatID, id)
		return
	}

	if a.handleFlow(ctx, msg, userID, text) {
		return
	}
	a.sendPanel(chatID)
}

// handleFlow advances an add/edit flow; it reports whether msg was consumed.
func (a *AdminBot) handleFlow(ctx context.Context, msg *tgbotapi.Message, userID int64, text string) bool {
	st := a.flow(userID)
	if st == nil {
		return false
	}
	chatID := msg.Chat.ID

	switch st.Step {
	case stepCategory:
		a.sendWithInline(chatID, lang.T(a.locale, "bot.admin_pick_cat"), a.adminCategoryKeyboard())
	case stepName:
		if text == "" {
			a.send(chatID, lang.T(a.locale, "bot.admin_send_name"))
			return true
		}
		st.Name = text
		st.Step = stepPrice
		a.send(chatID, lang.T(a.locale, "bot.admin_send_price", text))
	case stepPrice:
		price, ok := parsePrice(text)
		if !ok {
			a.send(chatID, lang.T(a.locale, "bot.admin_bad_price"))
			return true
		}
		st.Price = price
		st.Step = stepDesc
		a.send(chatID, lang.T(a.locale, "bot.admin_send_desc"))
	case stepDesc:
		if text != "/skip" {
			st.Description = text
		}
		st.Step = stepPhoto
		a.send(chatID, lang.T(a.locale, "bot.admin_send_photo"))
	case stepPhoto:
		form := st.form()
		if len(msg.Photo) > 0 {
			body, err := a.downloadPhoto(ctx, msg.Photo[len(msg.Photo)-1].FileID)
			if err != nil {
				a.log.Warn("download photo", zap.Error(err))
				a.send(chatID, "⚠️ "+err.Error())
				return true
			}
			defer body.Close()
			form.Image = body
			form.ImageName = "photo.jpg"
		} else if text != "/skip" {
			a.send(chatID, lang.T(a.locale, "bot.admin_send_photo"))
			return true
		}
		a.setFlow(userID, nil)
		var n services.Notice
		if st.EditID > 0 {
			n = a.menu.Update(ctx, st.EditID, form)
		} else {
			n = a.menu.Add(ctx, form)
		}
		a.send(chatID, noticePrefix(n)+n.Text(a.locale))
		a.sendPanel(chatID)
	case stepTax, stepService, stepRestName, stepRestAddress, stepRestPhone:
		if text == "" {
			a.askSetting(chatID, st)
			return true
		}
		if err := st.checkSetting(text); err != nil {
			a.send(chatID, "⚠️ "+lang.T(a.locale, "alert.invalid_settings", err.Error()))
			return true
		}
		if next := st.setSetting(text); next != "" {
			st.Step = next
			a.askSetting(chatID, st)
			return true
		}
		a.setFlow(userID, nil)
		if st.Settings == (models.Settings{}) {
			a.send(chatID, lang.T(a.locale, "bot.admin_no_change"))
		} else {
			n := a.menu.UpdateSettings(ctx, st.Settings)
			a.send(chatID, noticePrefix(n)+n.Text(a.locale))
		}
		a.sendPanel(chatID)
	}
	return true
}

func (a *AdminBot) startSettings(ctx context.Context, chatID, userID int64) {
	current, err := a.menu.Settings(ctx)
	if err != nil {
		a.log.Warn("read settings", zap.Error(err))
		a.send(chatID, "⚠️ "+lang.T(a.locale, "alert.settings_error"))
		return
	}
	st := &adminFlow{Step: settingsSteps[0].step, Current: current}
	a.setFlow(userID, st)
	a.send(chatID, lang.T(a.locale, "bot.admin_settings")+"\n\n"+renderSettingsForm(a.locale, current))
	a.askSetting(chatID, st)
}

func (a *AdminBot) askSetting(chatID int64, st *adminFlow) {
	for _, s := range settingsSteps {
		if s.step == st.Step {
			a.send(chatID, lang.T(a.locale, "bot.admin_send_field", lang.T(a.locale, s.label), settingValue(st.Current, s.step)))
			return
		}
	}
}

func (a *AdminBot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	a.request(tgbotapi.NewCallback(cq.ID, ""))
	if cq.Message == nil || !a.allowed(cq.From.ID) {
		return
	}
	chatID := cq.Message.Chat.ID
	userID := cq.From.ID
	data := cq.Data

	switch {
	case data == cbAdmAdd:
		a.startFlow(chatID, userID, 0)
	case data == cbAdmSet:
		a.startSettings(ctx, chatID, userID)
	case strings.HasPrefix(data, cbAdmList):
		a.sendList(ctx, chatID, strings.TrimPrefix(data, cbAdmList))
	case strings.HasPrefix(data, cbAdmCat):
		st := a.flow(userID)
		cat := strings.TrimPrefix(data, cbAdmCat)
		if st == nil || st.Step != stepCategory || !models.ValidCategory(cat) {
			return
		}
		st.Category = cat
		st.Step = stepName
		a.send(chatID, lang.T(a.locale, "bot.admin_send_name"))
	case strings.HasPrefix(data, cbAdmEdit):
		if id, ok := parseIDCallback(data, cbAdmEdit); ok {
			a.startFlow(chatID, userID, id)
		}
	case strings.HasPrefix(data, cbAdmDelAsk):
		if id, ok := parseIDCallback(data, cbAdmDelAsk); ok {
			a.askDelete(chatID, id)
		}
	case strings.HasPrefix(data, cbAdmDel):
		id, ok := parseIDCallback(data, cbAdmDel)
		if !ok {
			return
		}
		n := a.menu.Delete(ctx, id)
		a.request(tgbotapi.NewEditMessageText(chatID, cq.Message.MessageID, noticePrefix(n)+n.Text(a.locale)))
	case data == cbAdmCancel:
		a.setFlow(userID, nil)
		a.request(tgbotapi.NewEditMessageText(chatID, cq.Message.MessageID, lang.T(a.locale, "bot.cancelled")))
	}
}

func (a *AdminBot) startFlow(chatID, userID, editID int64) {
	a.setFlow(userID, &adminFlow{Step: stepCategory, EditID: editID})
	text := lang.T(a.locale, "bot.admin_pick_cat")
	if editID > 0 {
		if it, ok := a.catalog.Lookup(editID); ok {
			text = fmt.Sprintf("%s: %s (#%d)\n\n%s", lang.T(a.locale, "menu.edit"), it.Name, it.ID, text)
		}
	}
	a.sendWithInline(chatID, text, a.adminCategoryKeyboard())
}

func (a *AdminBot) askDelete(chatID, id int64) {
	name := "#" + strconv.FormatInt(id, 10)
	if it, ok := a.catalog.Lookup(id); ok {
		name = it.Name
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(lang.T(a.locale, "common.delete"), cbAdmDel+strconv.FormatInt(id, 10)),
		tgbotapi.NewInlineKeyboardButtonData(lang.T(a.locale, "common.cancel"), cbAdmCancel),
	))
	a.sendWithInline(chatID, lang.T(a.locale, "bot.admin_delete_ask", name), kb)
}

func (a *AdminBot) sendPanel(chatID int64) {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ "+lang.T(a.locale, "menu.add_item"), cbAdmAdd),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ "+lang.T(a.locale, "settings.title"), cbAdmSet),
		),
	}
	var row []tgbotapi.InlineKeyboardButton
	for _, cat := range models.Categories {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("📋 "+lang.CategoryLabel(a.locale, cat), cbAdmList+cat))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	text := lang.T(a.locale, "bot.admin_panel") + "\n\n" + lang.T(a.locale, "bot.admin_usage")
	a.sendWithInline(chatID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (a *AdminBot) sendList(ctx context.Context, chatID int64, category string) {
	items, err := a.catalog.ByCategory(ctx, category)
	if err != nil {
		a.send(chatID, "⚠️ "+lang.T(a.locale, "alert.menu_load_error"))
		return
	}
	text := "📋 " + lang.CategoryLabel(a.locale, category)
	if len(items) == 0 {
		a.send(chatID, text+"\n\n"+lang.T(a.locale, "billing.no_category"))
		return
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, it := range items {
		id := strconv.FormatInt(it.ID, 10)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✏️ %s — %s", it.Name, it.Price.StringFixed(2)), cbAdmEdit+id),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbAdmDelAsk+id),
		))
	}
	a.sendWithInline(chatID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (a *AdminBot) adminCategoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, cat := range models.Categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.CategoryLabel(a.locale, cat), cbAdmCat+cat),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(lang.T(a.locale, "common.cancel"), cbAdmCancel),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (a *AdminBot) downloadPhoto(ctx context.Context, fileID string) (io.ReadCloser, error) {
	url, err := a.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download photo: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (a *AdminBot) flow(userID int64) *adminFlow {
	a.flowsMu.Lock()
	defer a.flowsMu.Unlock()
	return a.flows[userID]
}

func (a *AdminBot) setFlow(userID int64, st *adminFlow) {
	a.flowsMu.Lock()
	defer a.flowsMu.Unlock()
	if st == nil {
		delete(a.flows, userID)
		return
	}
	a.flows[userID] = st
}

func (a *AdminBot) send(chatID int64, text string) {
	if _, err := a.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		a.log.Warn("send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (a *AdminBot) sendWithInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := a.api.Send(msg); err != nil {
		a.log.Warn("send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (a *AdminBot) request(c tgbotapi.Chattable) {
	if _, err := a.api.Request(c); err != nil {
		a.log.Debug("telegram request", zap.Error(err))
	}
}

func (st *adminFlow) form() models.MenuItemForm {
	return models.MenuItemForm{
		Name:        st.Name,
		Category:    st.Category,
		Price:       st.Price,
		Description: st.Description,
	}
}

// checkSetting validates text for the current step; /skip always passes.
func (st *adminFlow) checkSetting(text string) error {
	if text == "/skip" {
		return nil
	}
	switch st.Step {
	case stepTax:
		return services.ValidateSettings(models.Settings{TaxRate: text})
	case stepService:
		return services.ValidateSettings(models.Settings{ServiceChargeRate: text})
	}
	return nil
}

// setSetting records text for the current step unless it is /skip and
// returns the next step, or "" when the flow is complete.
func (st *adminFlow) setSetting(text string) string {
	if text != "/skip" {
		switch st.Step {
		case stepTax:
			st.Settings.TaxRate = text
		case stepService:
			st.Settings.ServiceChargeRate = text
		case stepRestName:
			st.Settings.RestaurantName = text
		case stepRestAddress:
			st.Settings.RestaurantAddress = text
		case stepRestPhone:
			st.Settings.RestaurantPhone = text
		}
	}
	for i, s := range settingsSteps {
		if s.step == st.Step && i+1 < len(settingsSteps) {
			return settingsSteps[i+1].step
		}
	}
	return ""
}

func settingValue(s models.Settings, step string) string {
	switch step {
	case stepTax:
		return s.TaxRate
	case stepService:
		return s.ServiceChargeRate
	case stepRestName:
		return s.RestaurantName
	case stepRestAddress:
		return s.RestaurantAddress
	case stepRestPhone:
		return s.RestaurantPhone
	}
	return ""
}

func renderSettingsForm(l string, s models.Settings) string {
	var b strings.Builder
	for i, f := range settingsSteps {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s", lang.T(l, f.label), settingValue(s, f.step))
	}
	return b.String()
}

// parsePrice accepts "120", "120.50", "120,50" or "₹ 1 200.00".
func parsePrice(text string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "₹")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

func noticePrefix(n services.Notice) string {
	switch n.Level {
	case services.LevelSuccess:
		return "✅ "
	case services.LevelDanger, services.LevelWarning:
		return "⚠️ "
	}
	return ""
}
