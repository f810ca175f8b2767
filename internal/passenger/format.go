package passenger

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var (
	turkishMonths = [...]string{
		"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
		"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
	}
	turkishDays = [...]string{
		"Pazar", "Pazartesi", "Salı", "Çarşamba", "Perşembe", "Cuma", "Cumartesi",
	}
)

// Greeting returns the salutation for the hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Günaydın,"
	case h < 18:
		return "İyi günler,"
	default:
		return "İyi akşamlar,"
	}
}

// FormatDate renders t as "18 Ekim 2026, Pazar".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d, %s", t.Day(), turkishMonths[t.Month()-1], t.Year(), turkishDays[t.Weekday()])
}

// Initials returns the upper-cased first letters of the first two words.
func Initials(name string) string {
	var b strings.Builder
	for i, w := range strings.Fields(name) {
		if i == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.TurkishCase.ToUpper(r))
	}
	return b.String()
}

// FirstName returns the first word of name.
func FirstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return ""
}
