package catalog

var defaultMenu = []MenuEntry{
	{Category: "Sashimi", Name: "鮭魚 (Salmon)", Price: 70, RestaurantPrice: 120, Calories: 55, Desc: "現點現切的基本魚種"},
	{Category: "Sashimi", Name: "紅魽 (Amberjack)", Price: 80, RestaurantPrice: 150, Calories: 45, Desc: "配合時令供應的魚種"},
	{Category: "Sushi", Name: "炙燒干貝握壽司", Price: 100, RestaurantPrice: 180, Calories: 45, Desc: "生食級干貝，鮮甜"},
	{Category: "Yakimono", Name: "香魚姿燒", Price: 180, RestaurantPrice: 280, Calories: 220, Desc: "串波技法，NAGOMI 必吃"},
	{Category: "Agemono", Name: "廣島炸牡蠣", Price: 100, RestaurantPrice: 160, Calories: 140, Desc: "爆漿鮮味，必搶"},
	{Category: "Drink", Name: "三得利頂級生啤", Price: 180, RestaurantPrice: 250, Calories: 140, Desc: "無限暢飲，神級泡沫"},
}

// Default returns the built-in catalog used when no sheet is reachable.
func Default() []MenuEntry {
	return Clone(defaultMenu)
}

// CategoryLabels maps catalog categories to their display labels.
var CategoryLabels = map[string]string{
	"Sashimi":      "現切刺身",
	"Sushi":        "壽司手卷",
	"Kobachi":      "懷石小缽",
	"Yakimono":     "職人烤物",
	"Agemono":      "炸物天婦羅",
	"Soup":         "湯品/鍋物",
	"Steamed Dish": "蒸物",
	"Cooked Dish":  "熱菜/鐵板",
	"Drink":        "飲品酒水",
	"Dessert":      "精緻甜點",
}

// Label returns the display label of a category, or the category itself.
func Label(category string) string {
	if l, ok := CategoryLabels[category]; ok {
		return l
	}
	return category
}
