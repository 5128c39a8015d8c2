package printer

// iconMap holds [emoji, fallback] pairs for report decorations.
var iconMap = map[string][2]string{
	"rocket":      {"🚀", "[>>]"},
	"search":      {"🔍", "[?]"},
	"statistics":  {"📊", "[#]"},
	"division":    {"📍", "[DIV]"},
	"score":       {"⭐", "[*]"},
	"description": {"📝", "[i]"},
	"style":       {"🎮", "[STY]"},
	"culture":     {"🏆", "[CUL]"},
	"facilities":  {"🏟️ ", "[FAC]"},
	"recruitment": {"👥", "[REC]"},
	"budget":      {"💰", "[EUR]"},
}

// icon returns the emoji for key, or its ASCII fallback when emoji are disabled.
func icon(key string, emoji bool) string {
	mapping, ok := iconMap[key]
	if !ok {
		return "[?]"
	}
	if emoji {
		return mapping[0]
	}
	return mapping[1]
}
