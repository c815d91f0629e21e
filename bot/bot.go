package bot

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/navaneethdubbaka/Food-Engine/config"
	"github.com/navaneethdubbaka/Food-Engine/lang"
	"github.com/navaneethdubbaka/Food-Engine/models"
	"github.com/navaneethdubbaka/Food-Engine/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Deps are the process-wide services shared by every chat.
type Deps struct {
	Catalog *services.Catalog
	Backend services.BillingBackend
	Policy  services.RatePolicy
	Events  services.BillPublisher // optional
	Prefs   services.LanguageStore
	Log     *zap.Logger
}

// Bot is the cashier terminal. Every chat is its own register.
type Bot struct {
	api  *tgbotapi.BotAPI
	cfg  *config.Config
	deps Deps
	log  *zap.Logger

	registers   map[int64]*services.Register
	registersMu sync.Mutex

	userLang   map[int64]string
	userLangMu sync.RWMutex

	// chat -> item id whose quantity the next text message sets
	awaitingQty   map[int64]int64
	awaitingQtyMu sync.Mutex
}

func New(cfg *config.Config, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:         api,
		cfg:         cfg,
		deps:        deps,
		log:         deps.Log.Named("bot"),
		registers:   make(map[int64]*services.Register),
		userLang:    make(map[int64]string),
		awaitingQty: make(map[int64]int64),
	}, nil
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Start billing"},
		tgbotapi.BotCommand{Command: "menu", Description: "Menu categories"},
		tgbotapi.BotCommand{Command: "bill", Description: "Current bill"},
		tgbotapi.BotCommand{Command: "search", Description: "Search the menu"},
		tgbotapi.BotCommand{Command: "settings", Description: "Reload rates and restaurant details"},
		tgbotapi.BotCommand{Command: "language", Description: "Change language"},
	)
	_, err := b.api.Request(cfg)
	return err
}

// Start polls updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	if err := b.setBotCommands(); err != nil {
		b.log.Warn("set bot commands", zap.Error(err))
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	b.log.Info("terminal bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/start":
		b.handleStart(ctx, chatID)
	case text == "/language":
		b.sendWithInline(chatID, lang.T(b.getLang(ctx, chatID), "bot.choose_lang"), languageKeyboard())
	case text == "/menu":
		b.sendCategories(ctx, chatID)
	case text == "/bill":
		b.sendBill(ctx, chatID)
	case strings.HasPrefix(text, "/search"):
		b.handleSearch(ctx, chatID, commandArg(text))
	case text == "/settings":
		b.handleSettings(ctx, chatID)
	case text != "" && !strings.HasPrefix(text, "/"):
		if id, ok := b.takeAwaitingQty(chatID); ok {
			b.register(ctx, chatID).SetQuantity(id, text)
			b.sendBill(ctx, chatID)
		}
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	if _, ok, err := b.deps.Prefs.Language(ctx, terminalID(chatID)); err != nil || !ok {
		if err != nil {
			b.log.Warn("load language", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		b.sendWithInline(chatID, lang.T(b.cfg.Display.DefaultLocale, "bot.choose_lang"), languageKeyboard())
		return
	}
	b.sendCategories(ctx, chatID)
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		b.answer(cq, services.Notice{}, "")
		return
	}
	chatID := cq.Message.Chat.ID
	msgID := cq.Message.MessageID
	data := cq.Data
	l := b.getLang(ctx, chatID)

	switch {
	case strings.HasPrefix(data, cbLang):
		code := strings.TrimPrefix(data, cbLang)
		if !lang.Valid(code) {
			b.answer(cq, services.Notice{}, l)
			return
		}
		if err := b.deps.Prefs.SetLanguage(ctx, terminalID(chatID), code); err != nil {
			b.log.Warn("save language", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		b.setLang(chatID, code)
		b.answerText(cq, lang.T(code, "alert.language_changed"), false)
		b.sendCategories(ctx, chatID)
	case strings.HasPrefix(data, cbCategory):
		b.answer(cq, services.Notice{}, l)
		b.sendCategory(ctx, chatID, strings.TrimPrefix(data, cbCategory))
	case strings.HasPrefix(data, cbAdd):
		id, ok := parseIDCallback(data, cbAdd)
		if !ok {
			b.answer(cq, services.Notice{}, l)
			return
		}
		_, n := b.register(ctx, chatID).AddByID(id)
		b.answer(cq, n, l)
	case strings.HasPrefix(data, cbInc), strings.HasPrefix(data, cbDec):
		delta, prefix := 1, cbInc
		if strings.HasPrefix(data, cbDec) {
			delta, prefix = -1, cbDec
		}
		b.answer(cq, services.Notice{}, l)
		if id, ok := parseIDCallback(data, prefix); ok {
			s := b.register(ctx, chatID).AdjustQuantity(id, delta)
			b.editBill(chatID, msgID, l, s)
		}
	case strings.HasPrefix(data, cbQty):
		b.answer(cq, services.Notice{}, l)
		id, ok := parseIDCallback(data, cbQty)
		if !ok {
			return
		}
		name := strconv.FormatInt(id, 10)
		for _, li := range b.register(ctx, chatID).Summary().Lines {
			if li.ItemID == id {
				name = li.Name
			}
		}
		b.awaitingQtyMu.Lock()
		b.awaitingQty[chatID] = id
		b.awaitingQtyMu.Unlock()
		b.send(chatID, lang.T(l, "bot.enter_quantity", name))
	case strings.HasPrefix(data, cbRemove):
		id, ok := parseIDCallback(data, cbRemove)
		if !ok {
			b.answer(cq, services.Notice{}, l)
			return
		}
		s, n := b.register(ctx, chatID).Remove(id)
		b.answer(cq, n, l)
		b.editBill(chatID, msgID, l, s)
	case data == cbBill:
		b.answer(cq, services.Notice{}, l)
		b.editBill(chatID, msgID, l, b.register(ctx, chatID).Summary())
	case data == cbClear:
		reg := b.register(ctx, chatID)
		if reg.Summary().IsEmpty() {
			_, n := reg.Clear()
			b.answer(cq, n, l)
			return
		}
		b.answer(cq, services.Notice{}, l)
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, lang.T(l, "bot.confirm_clear"), clearConfirmKeyboard(l))
		b.request(edit)
	case data == cbClearYes:
		s, n := b.register(ctx, chatID).Clear()
		b.answer(cq, n, l)
		b.editBill(chatID, msgID, l, s)
	case data == cbSubmit:
		b.handleSubmit(ctx, cq, l)
	case data == cbBackCats:
		b.answer(cq, services.Notice{}, l)
		b.sendCategories(ctx, chatID)
	default:
		b.answer(cq, services.Notice{}, l)
	}
}

func (b *Bot) handleSubmit(ctx context.Context, cq *tgbotapi.CallbackQuery, l string) {
	chatID := cq.Message.Chat.ID
	sub := b.register(ctx, chatID).Submit(ctx)
	b.answer(cq, sub.Notice, l)
	b.editBill(chatID, cq.Message.MessageID, l, sub.Summary)
	if sub.BillNumber != "" {
		b.send(chatID, renderReceipt(l, b.cfg.Display.Currency, sub))
	}
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, term string) {
	l := b.getLang(ctx, chatID)
	if term == "" {
		b.send(chatID, lang.T(l, "bot.search_usage"))
		return
	}
	items := b.deps.Catalog.Search(term)
	if len(items) == 0 {
		b.send(chatID, lang.T(l, "bot.search_empty", term))
		return
	}
	b.sendWithInline(chatID, lang.T(l, "bot.search_results", term), itemsKeyboard(l, b.cfg.Display.Currency, items))
}

func (b *Bot) handleSettings(ctx context.Context, chatID int64) {
	l := b.getLang(ctx, chatID)
	reg := b.register(ctx, chatID)
	s, err := reg.LoadSettings(ctx)
	if err != nil {
		b.send(chatID, "⚠️ "+lang.T(l, "alert.settings_error"))
		return
	}
	b.send(chatID, renderSettings(l, reg.Settings(), s.Rates))
}

func (b *Bot) sendCategories(ctx context.Context, chatID int64) {
	l := b.getLang(ctx, chatID)
	b.register(ctx, chatID)
	b.sendWithInline(chatID, lang.T(l, "billing.select_category"), categoryKeyboard(l))
}

func (b *Bot) sendCategory(ctx context.Context, chatID int64, category string) {
	l := b.getLang(ctx, chatID)
	items, err := b.deps.Catalog.ByCategory(ctx, category)
	if err != nil {
		b.send(chatID, "⚠️ "+lang.T(l, "alert.menu_load_error"))
		return
	}
	text := "📋 " + lang.CategoryLabel(l, category)
	if len(items) == 0 {
		text += "\n\n" + lang.T(l, "billing.no_category")
	}
	b.sendWithInline(chatID, text, itemsKeyboard(l, b.cfg.Display.Currency, items))
}

func (b *Bot) sendBill(ctx context.Context, chatID int64) {
	l := b.getLang(ctx, chatID)
	s := b.register(ctx, chatID).Summary()
	b.sendWithInline(chatID, renderBill(l, b.cfg.Display.Currency, s), billKeyboard(l, s))
}

func (b *Bot) editBill(chatID int64, msgID int, l string, s services.Summary) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, renderBill(l, b.cfg.Display.Currency, s), billKeyboard(l, s))
	b.request(edit)
}

// register returns the chat's register, creating it and loading settings on
// first use.
func (b *Bot) register(ctx context.Context, chatID int64) *services.Register {
	b.registersMu.Lock()
	reg, ok := b.registers[chatID]
	if !ok {
		reg = services.NewRegister(services.RegisterOptions{
			Terminal: terminalID(chatID),
			Catalog:  b.deps.Catalog,
			Backend:  b.deps.Backend,
			Policy:   b.deps.Policy,
			Events:   b.deps.Events,
			Log:      b.deps.Log,
		})
		b.registers[chatID] = reg
	}
	b.registersMu.Unlock()

	if !ok {
		// failure keeps the fallback rates; /settings retries
		_, _ = reg.LoadSettings(ctx)
	}
	return reg
}

// ApplySettings pushes new backend settings to every open chat register.
func (b *Bot) ApplySettings(s models.Settings) {
	b.registersMu.Lock()
	regs := make([]*services.Register, 0, len(b.registers))
	for _, reg := range b.registers {
		regs = append(regs, reg)
	}
	b.registersMu.Unlock()
	for _, reg := range regs {
		reg.ApplySettings(s)
	}
}

func (b *Bot) takeAwaitingQty(chatID int64) (int64, bool) {
	b.awaitingQtyMu.Lock()
	defer b.awaitingQtyMu.Unlock()
	id, ok := b.awaitingQty[chatID]
	delete(b.awaitingQty, chatID)
	return id, ok
}

func (b *Bot) getLang(ctx context.Context, chatID int64) string {
	b.userLangMu.RLock()
	l, ok := b.userLang[chatID]
	b.userLangMu.RUnlock()
	if ok {
		return l
	}
	l = lang.Normalize(b.cfg.Display.DefaultLocale)
	if stored, found, err := b.deps.Prefs.Language(ctx, terminalID(chatID)); err == nil && found && lang.Valid(stored) {
		l = stored
	}
	b.setLang(chatID, l)
	return l
}

func (b *Bot) setLang(chatID int64, code string) {
	b.userLangMu.Lock()
	defer b.userLangMu.Unlock()
	b.userLang[chatID] = code
}

// answer turns a notice into a callback toast; danger notices use an alert box.
func (b *Bot) answer(cq *tgbotapi.CallbackQuery, n services.Notice, l string) {
	b.answerText(cq, n.Text(l), n.Level == services.LevelDanger)
}

func (b *Bot) answerText(cq *tgbotapi.CallbackQuery, text string, alert bool) {
	cb := tgbotapi.NewCallback(cq.ID, text)
	if alert {
		cb = tgbotapi.NewCallbackWithAlert(cq.ID, text)
	}
	b.request(cb)
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendWithInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) request(c tgbotapi.Chattable) {
	if _, err := b.api.Request(c); err != nil {
		b.log.Debug("telegram request", zap.Error(err))
	}
}

func terminalID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}
