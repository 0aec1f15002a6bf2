package voice

// numerals maps spoken Hebrew number words to digits. Both gender forms
// are listed where they differ.
var numerals = map[string]string{
	"אפס":    "0",
	"אחד":    "1",
	"אחת":    "1",
	"שתיים":  "2",
	"שתים":   "2",
	"שניים":  "2",
	"שנים":   "2",
	"שלוש":   "3",
	"שלושה":  "3",
	"ארבע":   "4",
	"ארבעה":  "4",
	"חמש":    "5",
	"חמישה":  "5",
	"שש":     "6",
	"שישה":   "6",
	"שבע":    "7",
	"שבעה":   "7",
	"שמונה":  "8",
	"תשע":    "9",
	"תשעה":   "9",
	"עשר":    "10",
	"עשרה":   "10",
	"עשרים":  "20",
	"שלושים": "30",
	"ארבעים": "40",
	"חמישים": "50",
	"שישים":  "60",
	"שבעים":  "70",
	"שמונים": "80",
	"תשעים":  "90",
	"מאה":    "100",
}

// decimalWord separates the integer and fractional parts of a spoken
// decimal.
const decimalWord = "נקודה"

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
