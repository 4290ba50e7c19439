package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("stackvm: locale: %v", err)
	}

	Use(locales...)
}

// Use selects the output language from a preference ordered list of
// BCP 47 tags. Unmatched or empty lists select en-US.
func Use(tags ...string) {
	var prefs []language.Tag
	for _, text := range tags {
		tag, err := language.Parse(text)
		if err == nil {
			prefs = append(prefs, tag)
		}
	}

	_, index, _ := matcher.Match(prefs...)
	printer = message.NewPrinter(supported[index])
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
