package offline

import (
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Merchant is a gazetteer entry: a canonical store name plus its spelling and
// language variants as they appear in real messages.
type Merchant struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// Gazetteer matches source text against a registered merchant vocabulary.
// Aliases are tested in registration order and the first alias that occurs
// anywhere in the text wins, so more specific entries must be registered
// before their prefixes (Golf&Co before Golf).
type Gazetteer struct {
	entries []gazetteerEntry
}

type gazetteerEntry struct {
	name    string
	pattern *regexp.Regexp
}

// NewGazetteer compiles alias patterns for the given merchants. Aliases are
// matched case-insensitively with letter/digit boundaries on both sides.
func NewGazetteer(merchants []Merchant) *Gazetteer {
	g := &Gazetteer{}
	for _, m := range merchants {
		for _, alias := range m.Aliases {
			if alias == "" {
				continue
			}
			pattern := regexp.MustCompile(`(?i)(?:^|[^\pL\pN])(` + regexp.QuoteMeta(alias) + `)(?:$|[^\pL\pN])`)
			g.entries = append(g.entries, gazetteerEntry{name: m.Name, pattern: pattern})
		}
	}
	return g
}

// LoadGazetteer reads merchants from a YAML file and appends them after the
// built-in vocabulary, so built-in aliases keep precedence.
func LoadGazetteer(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "gazetteer: read %s", path)
	}
	var merchants []Merchant
	if err := yaml.Unmarshal(data, &merchants); err != nil {
		return nil, eris.Wrapf(err, "gazetteer: parse %s", path)
	}
	return NewGazetteer(append(defaultMerchants(), merchants...)), nil
}

// Match returns the canonical name and span of the first registered alias
// occurring in text. The span covers the alias occurrence only.
func (g *Gazetteer) Match(text string) (name string, start, end int, ok bool) {
	for _, e := range g.entries {
		loc := e.pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		// Submatch 1 is the alias itself, without the boundary characters.
		return e.name, loc[2], loc[3], true
	}
	return "", 0, 0, false
}

// DefaultGazetteer returns the built-in merchant vocabulary.
func DefaultGazetteer() *Gazetteer {
	return NewGazetteer(defaultMerchants())
}

// defaultMerchants covers common regional retailers with Hebrew and Latin
// spellings. Registration order matters: see Gazetteer.
func defaultMerchants() []Merchant {
	return []Merchant{
		{Name: "BuyMe", Aliases: []string{"BuyMe", "Buy Me", "באיימי", "ביי מי"}},
		{Name: "Dream Card", Aliases: []string{"Dream Card", "DreamCard", "דרים קארד"}},
		{Name: "Fox Home", Aliases: []string{"Fox Home", "פוקס הום"}},
		{Name: "Fox", Aliases: []string{"Fox", "פוקס"}},
		{Name: "Castro", Aliases: []string{"Castro", "קסטרו"}},
		{Name: "Zara", Aliases: []string{"Zara", "זארה"}},
		{Name: "H&M", Aliases: []string{"H&M", "H&amp;M", "אייץ' אנד אם"}},
		{Name: "Terminal X", Aliases: []string{"Terminal X", "TerminalX", "טרמינל איקס"}},
		{Name: "Golf & Co", Aliases: []string{"Golf & Co", "Golf&Co", "גולף אנד קו"}},
		{Name: "Golf", Aliases: []string{"Golf", "גולף"}},
		{Name: "Renuar", Aliases: []string{"Renuar", "רנואר"}},
		{Name: "American Eagle", Aliases: []string{"American Eagle", "אמריקן איגל"}},
		{Name: "Shufersal", Aliases: []string{"Shufersal", "שופרסל"}},
		{Name: "Rami Levy", Aliases: []string{"Rami Levy", "רמי לוי"}},
		{Name: "Victory", Aliases: []string{"Victory", "ויקטורי"}},
		{Name: "Super-Pharm", Aliases: []string{"Super-Pharm", "SuperPharm", "סופר פארם", "סופרפארם"}},
		{Name: "Hamashbir", Aliases: []string{"Hamashbir", "המשביר"}},
		{Name: "Mega Sport", Aliases: []string{"Mega Sport", "מגה ספורט"}},
		{Name: "Decathlon", Aliases: []string{"Decathlon", "דקתלון"}},
		{Name: "Nike", Aliases: []string{"Nike", "נייקי"}},
		{Name: "Adidas", Aliases: []string{"Adidas", "אדידס"}},
		{Name: "KSP", Aliases: []string{"KSP", "קיי אס פי"}},
		{Name: "Ivory", Aliases: []string{"Ivory", "אייבורי"}},
		{Name: "Bug", Aliases: []string{"Bug", "באג"}},
		{Name: "McDonald's", Aliases: []string{"McDonald's", "McDonalds", "מקדונלדס"}},
		{Name: "Aroma", Aliases: []string{"Aroma", "ארומה"}},
		{Name: "Cafe Cafe", Aliases: []string{"Cafe Cafe", "CafeCafe", "קפה קפה"}},
		{Name: "Max Brenner", Aliases: []string{"Max Brenner", "מקס ברנר"}},
		{Name: "Steimatzky", Aliases: []string{"Steimatzky", "סטימצקי"}},
		{Name: "Laline", Aliases: []string{"Laline", "ללין"}},
		{Name: "Sabon", Aliases: []string{"Sabon", "סבון"}},
		{Name: "Zer4U", Aliases: []string{"Zer4U", "זר פור יו"}},
		{Name: "Isracard", Aliases: []string{"Isracard", "ישראכרט"}},
	}
}
