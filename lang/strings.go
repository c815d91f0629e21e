package lang

var en = map[string]string{
	"nav.restaurant_name": "Restaurant Billing",
	"nav.billing":         "Billing",
	"nav.menu":            "Menu",
	"nav.settings":        "Settings",

	"billing.title":           "Menu Items",
	"billing.select_category": "Select Category:",
	"billing.current_bill":    "Current Bill",
	"billing.no_items":        "No items in bill",
	"billing.subtotal":        "Subtotal:",
	"billing.tax":             "Tax",
	"billing.service_charge":  "Service Charge",
	"billing.total":           "Total:",
	"billing.generate_bill":   "Generate Bill",
	"billing.clear_bill":      "Clear Bill",
	"billing.rates_pending":   "rates not loaded",
	"billing.no_category":     "No items in this category",

	"menu.title":       "Menu Management",
	"menu.add_item":    "Add Menu Item",
	"menu.name":        "Item Name",
	"menu.category":    "Category",
	"menu.price":       "Price",
	"menu.description": "Description",
	"menu.image":       "Image",
	"menu.edit":        "Edit",
	"menu.delete":      "Delete",
	"menu.no_image":    "No Image",

	"settings.title":               "Settings",
	"settings.restaurant_name":     "Restaurant Name",
	"settings.restaurant_address":  "Restaurant Address",
	"settings.restaurant_phone":    "Restaurant Phone",
	"settings.tax_rate":            "Tax Rate (%)",
	"settings.service_charge_rate": "Service Charge Rate (%)",

	"category.beverage":    "Beverage",
	"category.dessert":     "Dessert",
	"category.main_course": "Main Course",
	"category.salad":       "Salad",
	"category.side_dish":   "Side Dish",
	"category.appetizer":   "Appetizer",

	"common.save":    "Save",
	"common.cancel":  "Cancel",
	"common.delete":  "Delete",
	"common.edit":    "Edit",
	"common.add":     "Add",
	"common.close":   "Close",
	"common.confirm": "Confirm",
	"common.yes":     "Yes",
	"common.no":      "No",
	"common.back":    "Back",

	"alert.item_added":            "%s added to bill",
	"alert.item_removed":          "Item removed from bill",
	"alert.item_not_found":        "Item is no longer on the menu",
	"alert.bill_empty":            "Please add items to the bill first",
	"alert.bill_generated":        "Bill generated successfully!",
	"alert.bill_error":            "Error generating bill",
	"alert.bill_cleared":          "Bill cleared",
	"alert.bill_already_empty":    "Bill is already empty",
	"alert.menu_load_error":       "Error loading menu items",
	"alert.settings_error":        "Error loading settings",
	"alert.settings_loaded":       "Settings loaded",
	"alert.item_add_ok":           "Menu item added successfully",
	"alert.item_add_error":        "Error adding menu item",
	"alert.item_update_ok":        "Menu item updated successfully",
	"alert.item_update_error":     "Error updating menu item",
	"alert.item_delete_ok":        "Menu item deleted successfully",
	"alert.item_delete_error":     "Error deleting menu item",
	"alert.invalid_item":          "Invalid menu item: %s",
	"alert.language_changed":      "Language changed",
	"alert.settings_update_ok":    "Settings updated successfully",
	"alert.settings_update_error": "Error updating settings",
	"alert.invalid_settings":      "Invalid settings: %s",

	"bot.choose_lang":      "Choose language / భాషను ఎంచుకోండి",
	"bot.bill_number":      "Bill number: %s",
	"bot.confirm_clear":    "Are you sure you want to clear the bill?",
	"bot.enter_quantity":   "Send the new quantity for «%s»:",
	"bot.search_usage":     "Usage: /search <text>",
	"bot.search_empty":     "Nothing matches «%s»",
	"bot.search_results":   "Results for «%s»:",
	"bot.view_bill":        "View Bill",
	"bot.categories":       "Categories",
	"bot.admin_denied":     "This bot is for menu administrators only.",
	"bot.admin_panel":      "Menu administration",
	"bot.admin_send_name":  "Send the item name:",
	"bot.admin_send_price": "Send the price for «%s» (e.g. 120.50):",
	"bot.admin_send_desc":  "Send a description, or /skip:",
	"bot.admin_send_photo": "Send a photo for the item, or /skip:",
	"bot.admin_bad_price":  "Invalid price. Send a number (e.g. 120.50).",
	"bot.admin_pick_cat":   "Choose a category:",
	"bot.admin_delete_ask": "Delete «%s»?",
	"bot.admin_usage":      "Usage: /edit <id>, /delete <id>, /settings",
	"bot.cancelled":        "Cancelled.",
	"bot.admin_settings":   "Current settings:",
	"bot.admin_send_field": "Send the new %s, or /skip to keep «%s»:",
	"bot.admin_no_change":  "Nothing changed.",
}

var te = map[string]string{
	"nav.restaurant_name": "రెస్టారెంట్ బిల్లింగ్",
	"nav.billing":         "బిల్లింగ్",
	"nav.menu":            "మెనూ",
	"nav.settings":        "సెట్టింగ్లు",

	"billing.title":           "మెనూ అంశాలు",
	"billing.select_category": "వర్గాన్ని ఎంచుకోండి:",
	"billing.current_bill":    "ప్రస్తుత బిల్లు",
	"billing.no_items":        "బిల్లులో అంశాలు లేవు",
	"billing.subtotal":        "ఉప-మొత్తం:",
	"billing.tax":             "పన్ను",
	"billing.service_charge":  "సేవా ఛార్జ్",
	"billing.total":           "మొత్తం:",
	"billing.generate_bill":   "బిల్లు తయారు చేయండి",
	"billing.clear_bill":      "బిల్లు క్లియర్ చేయండి",

	"menu.title":       "మెనూ నిర్వహణ",
	"menu.add_item":    "మెనూ అంశం జోడించండి",
	"menu.name":        "అంశం పేరు",
	"menu.category":    "వర్గం",
	"menu.price":       "ధర",
	"menu.description": "వివరణ",
	"menu.image":       "చిత్రం",
	"menu.edit":        "సవరించండి",
	"menu.delete":      "తొలగించండి",
	"menu.no_image":    "చిత్రం లేదు",

	"settings.title":               "సెట్టింగ్లు",
	"settings.restaurant_name":     "రెస్టారెంట్ పేరు",
	"settings.restaurant_address":  "రెస్టారెంట్ చిరునామా",
	"settings.restaurant_phone":    "రెస్టారెంట్ ఫోన్",
	"settings.tax_rate":            "పన్ను రేటు (%)",
	"settings.service_charge_rate": "సేవా ఛార్జ్ రేటు (%)",

	"category.beverage":    "పానీయాలు",
	"category.dessert":     "మిఠాయి",
	"category.main_course": "ప్రధాన వంటకం",
	"category.salad":       "సలాడ్",
	"category.side_dish":   "సైడ్ డిష్",
	"category.appetizer":   "ఆపెటైజర్",

	"common.save":    "సేవ్",
	"common.cancel":  "రద్దు",
	"common.delete":  "తొలగించండి",
	"common.edit":    "సవరించండి",
	"common.add":     "జోడించండి",
	"common.close":   "మూసివేయండి",
	"common.confirm": "నిర్ధారించండి",
	"common.yes":     "అవును",
	"common.no":      "కాదు",
	"common.back":    "వెనక్కి",
}
