package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/navaneethdubbaka/Food-Engine/lang"
	"github.com/navaneethdubbaka/Food-Engine/models"
	"github.com/navaneethdubbaka/Food-Engine/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data prefixes of the terminal bot.
const (
	cbLang     = "lang:"
	cbCategory = "cat:"
	cbAdd      = "add:"
	cbInc      = "inc:"
	cbDec      = "dec:"
	cbQty      = "qty:"
	cbRemove   = "rm:"
	cbBill     = "bill"
	cbClear    = "clear"
	cbClearYes = "clear_yes"
	cbSubmit   = "submit"
	cbBackCats = "back_cats"
)

var languageNames = map[string]string{
	lang.En: "English",
	lang.Te: "తెలుగు",
}

func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, code := range lang.Supported {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(languageNames[code], cbLang+code))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// categoryKeyboard lays the categories out two per row, followed by the bill button.
func categoryKeyboard(l string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, cat := range models.Categories {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(lang.CategoryLabel(l, cat), cbCategory+cat))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🧾 "+lang.T(l, "bot.view_bill"), cbBill),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func itemsKeyboard(l, currency string, items []models.MenuItem) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, it := range items {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s — %s", it.Name, services.FormatAmount(currency, it.Price)),
				cbAdd+strconv.FormatInt(it.ID, 10),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ "+lang.T(l, "bot.categories"), cbBackCats),
		tgbotapi.NewInlineKeyboardButtonData("🧾 "+lang.T(l, "bot.view_bill"), cbBill),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// billKeyboard has one control row per line item plus the bill actions.
func billKeyboard(l string, s services.Summary) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, li := range s.Lines {
		id := strconv.FormatInt(li.ItemID, 10)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖", cbDec+id),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s × %d", li.Name, li.Quantity), cbQty+id),
			tgbotapi.NewInlineKeyboardButtonData("➕", cbInc+id),
			tgbotapi.NewInlineKeyboardButtonData("✖", cbRemove+id),
		))
	}
	if !s.IsEmpty() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ "+lang.T(l, "billing.generate_bill"), cbSubmit),
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+lang.T(l, "billing.clear_bill"), cbClear),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ "+lang.T(l, "bot.categories"), cbBackCats),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func clearConfirmKeyboard(l string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "common.yes"), cbClearYes),
		tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "common.no"), cbBill),
	))
}

// renderBill is the text of the current bill panel.
func renderBill(l, currency string, s services.Summary) string {
	var sb strings.Builder
	sb.WriteString("🧾 " + lang.T(l, "billing.current_bill") + "\n\n")
	if s.IsEmpty() {
		sb.WriteString(lang.T(l, "billing.no_items"))
		return sb.String()
	}
	for _, li := range s.Lines {
		fmt.Fprintf(&sb, "• %s × %d — %s\n", li.Name, li.Quantity, services.FormatAmount(currency, li.LineTotal()))
	}
	sb.WriteString("\n")
	sb.WriteString(renderTotals(l, currency, s))
	return sb.String()
}

func renderTotals(l, currency string, s services.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", lang.T(l, "billing.subtotal"), services.FormatAmount(currency, s.Totals.Subtotal))
	fmt.Fprintf(&sb, "%s (%s%%): %s\n", lang.T(l, "billing.tax"), s.Rates.TaxRatePercent.String(),
		services.FormatAmount(currency, s.Totals.TaxAmount))
	fmt.Fprintf(&sb, "%s (%s%%): %s\n", lang.T(l, "billing.service_charge"), s.Rates.ServiceChargeRatePercent.String(),
		services.FormatAmount(currency, s.Totals.ServiceChargeAmount))
	fmt.Fprintf(&sb, "%s %s", lang.T(l, "billing.total"), services.FormatAmount(currency, s.Totals.GrandTotal))
	if !s.RatesLoaded {
		sb.WriteString("\n(" + lang.T(l, "billing.rates_pending") + ")")
	}
	return sb.String()
}

// renderReceipt is sent once the backend accepted a bill.
func renderReceipt(l, currency string, sub services.Submission) string {
	var sb strings.Builder
	sb.WriteString("✅ " + lang.T(l, "alert.bill_generated") + "\n")
	sb.WriteString(lang.T(l, "bot.bill_number", sub.BillNumber) + "\n\n")
	for _, li := range sub.Lines {
		fmt.Fprintf(&sb, "• %s × %d — %s\n", li.Name, li.Quantity, services.FormatAmount(currency, li.LineTotal()))
	}
	sb.WriteString("\n")
	sb.WriteString(renderTotals(l, currency, services.Summary{
		Lines:       sub.Lines,
		Totals:      sub.Totals,
		Rates:       sub.Summary.Rates,
		RatesLoaded: sub.Summary.RatesLoaded,
	}))
	return sb.String()
}

func renderSettings(l string, s models.Settings, rates models.RateConfig) string {
	name := s.RestaurantName
	if name == "" {
		name = lang.T(l, "nav.restaurant_name")
	}
	var sb strings.Builder
	sb.WriteString("⚙️ " + lang.T(l, "settings.title") + "\n\n")
	fmt.Fprintf(&sb, "%s: %s\n", lang.T(l, "settings.restaurant_name"), name)
	if s.RestaurantAddress != "" {
		fmt.Fprintf(&sb, "%s: %s\n", lang.T(l, "settings.restaurant_address"), s.RestaurantAddress)
	}
	if s.RestaurantPhone != "" {
		fmt.Fprintf(&sb, "%s: %s\n", lang.T(l, "settings.restaurant_phone"), s.RestaurantPhone)
	}
	fmt.Fprintf(&sb, "%s: %s\n", lang.T(l, "settings.tax_rate"), rates.TaxRatePercent.String())
	fmt.Fprintf(&sb, "%s: %s", lang.T(l, "settings.service_charge_rate"), rates.ServiceChargeRatePercent.String())
	return sb.String()
}

// parseIDCallback splits "inc:42" into its prefix and id.
func parseIDCallback(data, prefix string) (int64, bool) {
	if !strings.HasPrefix(data, prefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// commandArg returns the text after a bot command, e.g. "/search tea" -> "tea".
func commandArg(text string) string {
	i := strings.IndexAny(text, " \n")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(text[i+1:])
}
