package extract

import (
	"regexp"
	"strings"

	"github.com/matsen/citeparse/internal/record"
)

// keywordRule maps a keyword pattern to the value it yields.
type keywordRule struct {
	re    *regexp.Regexp
	value string
}

// keywordTable is evaluated in declared order; the first hit wins.
type keywordTable []keywordRule

func (t keywordTable) first(text string) string {
	for _, r := range t {
		if r.re.MatchString(text) {
			return r.value
		}
	}
	return ""
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

// stemRule matches words starting with any keyword, so plurals and inflections hit.
func stemRule(value string, words ...string) keywordRule {
	return keywordRule{
		re:    regexp.MustCompile(`(?:^|[^\p{L}])(?i:` + alternation(words) + `)`),
		value: value,
	}
}

// wordRule matches whole words only.
func wordRule(value string, words ...string) keywordRule {
	return keywordRule{
		re:    regexp.MustCompile(`(?:^|[^\p{L}])(?i:` + alternation(words) + `)(?:[^\p{L}]|$)`),
		value: value,
	}
}

var institutionKeywords = []struct {
	kind  string
	words []string
}{
	{record.InstitutionAbbey, []string{"abbaye", "abbatia", "abbey", "abtei", "abdij", "abadía", "abadia", "abbé"}},
	{record.InstitutionPriory, []string{"prieuré", "priory", "priorat", "prioratus", "priorij", "priorato"}},
	{record.InstitutionMonastery, []string{"monastère", "monasterium", "monastery", "mosteiro", "monasterio", "kloster", "klooster"}},
	{record.InstitutionCathedralChapter, []string{"chapitre cathédral", "chapitre", "cathédrale", "cathedral chapter", "cathedral", "domkapitel", "catedral", "kapittel"}},
	{record.InstitutionConvent, []string{"couvent", "convent", "convento"}},
	{record.InstitutionHospital, []string{"hôtel-dieu", "hôpital", "hospital", "hospice", "spital"}},
	{record.InstitutionChurch, []string{"collégiale", "église", "church", "kirche", "kerk", "iglesia", "igreja"}},
}

const (
	placeConnector = `(?:\s+(?i:de\s+la|de|du|des|of|von|van|zu|zum)\s+|\s+(?i:d|de\s+l)['’]\s*|\s+)`
	placeToken     = `\p{Lu}[\p{Ll}'’]*(?:-\p{L}[\p{Ll}'’]*)*`
)

// namedOnly keywords are ordinary words on their own ("chapitre premier")
// and only count when a place name follows.
var namedOnly = map[string]bool{"chapitre": true}

// bareSuffix admits plural endings ("abbayes", "churches", "Kirchen") but no
// longer words ("conventions", "Churchill").
const bareSuffix = `(?i:e?s|n)?(?:[^\p{L}]|$)`

type institutionRule struct {
	named *regexp.Regexp
	bare  *regexp.Regexp
	kind  string
}

var institutionRules = func() []institutionRule {
	rules := make([]institutionRule, len(institutionKeywords))
	for i, k := range institutionKeywords {
		var bareWords []string
		for _, w := range k.words {
			if !namedOnly[w] {
				bareWords = append(bareWords, w)
			}
		}
		kw := `(?i:` + alternation(k.words) + `)`
		rules[i] = institutionRule{
			named: regexp.MustCompile(`(?:^|[^\p{L}])(` + kw + placeConnector + `(` + placeToken + `))`),
			bare:  regexp.MustCompile(`(?:^|[^\p{L}])(?i:` + alternation(bareWords) + `)` + bareSuffix),
			kind:  k.kind,
		}
	}
	return rules
}()

// Institution is the religious or charitable house a citation is about.
type Institution struct {
	Name  string // matched span, e.g. "abbaye de Cluny"
	Place string // trailing place token, e.g. "Cluny"
	Type  string
}

var placeNoise = regexp.MustCompile(`\s*\([^)]*\)|[\s,;:.]+$`)

// FindInstitution scans the institution table in priority order. A keyword
// followed by a place name wins; otherwise the first bare keyword sets the type only.
func FindInstitution(text string) Institution {
	for _, r := range institutionRules {
		if m := r.named.FindStringSubmatch(text); m != nil {
			return Institution{
				Name:  strings.TrimSpace(m[1]),
				Place: cleanPlace(m[2]),
				Type:  r.kind,
			}
		}
	}
	for _, r := range institutionRules {
		if r.bare.MatchString(text) {
			return Institution{Type: r.kind}
		}
	}
	return Institution{}
}

func cleanPlace(s string) string {
	return strings.TrimSpace(placeNoise.ReplaceAllString(s, ""))
}

// Belgium precedes France: French institutional vocabulary would otherwise
// claim Walloon citations, and Flemish names must beat German keywords.
var countryTable = keywordTable{
	wordRule("Belgium", "hainaut", "flandre", "flandres", "brabant", "liège", "luik", "mons", "bruxelles", "brussel",
		"bruges", "brugge", "namur", "anvers", "antwerpen", "gent", "gand", "vlaanderen", "tournai", "louvain",
		"leuven", "belgique", "belgië", "belgium"),
	wordRule("France", "paris", "lyon", "abbaye", "prieuré", "france", "normandie", "bretagne", "bourgogne",
		"champagne", "picardie", "versailles", "pontoise", "cluny"),
	wordRule("Spain", "santiago", "galicia", "madrid", "españa", "catedral", "castilla", "toledo"),
	wordRule("England", "england", "london", "oxford", "cambridge", "somerset", "glastonbury", "worcester", "canterbury"),
	wordRule("Germany", "deutschland", "abtei", "kloster", "urkundenbuch", "köln", "mainz", "bayern"),
}

// Country returns the country suggested by place and vocabulary keywords.
func Country(text string) string { return countryTable.first(text) }

var regionTable = keywordTable{
	wordRule("Hainaut", "hainaut", "henegouwen"),
	wordRule("Flandre", "flandre", "flandres", "vlaanderen", "flanders"),
	wordRule("Brabant", "brabant"),
	wordRule("Namur", "namurois"),
	wordRule("Liège", "liège", "luik", "lüttich"),
	wordRule("Île-de-France", "île-de-france"),
	wordRule("Normandie", "normandie", "normandy"),
	wordRule("Bourgogne", "bourgogne", "burgundy"),
	wordRule("Champagne", "champagne"),
	wordRule("Bretagne", "bretagne", "brittany"),
	wordRule("Picardie", "picardie", "picardy"),
	wordRule("Lorraine", "lorraine", "lothringen"),
	wordRule("Galicia", "galicia"),
	wordRule("Castilla", "castilla", "castile"),
	wordRule("Somerset", "somerset"),
	wordRule("Bayern", "bayern", "bavaria"),
}

// Region returns a historic region named in the text.
func Region(text string) string { return regionTable.first(text) }

var orderTable = keywordTable{
	stemRule("Cistercian", "cistercien", "cistercian", "cîteaux", "zisterzienser", "cisterciën"),
	stemRule("Cluniac", "clunisien", "cluniac"),
	stemRule("Benedictine", "bénédictin", "benedictine", "benediktiner", "benedictijn"),
	stemRule("Premonstratensian", "prémontré", "premonstratensian", "prämonstratenser", "norbertin"),
	stemRule("Carthusian", "chartreux", "carthusian", "kartäuser"),
	stemRule("Augustinian", "augustins", "augustinian", "augustiner", "chanoines réguliers"),
	stemRule("Templar", "templier", "templar"),
	stemRule("Hospitaller", "hospitalier", "hospitaller"),
	stemRule("Franciscan", "franciscain", "franciscan", "franziskaner", "cordelier"),
	stemRule("Dominican", "dominicain", "dominican", "dominikaner", "frères prêcheurs"),
}

// ReligiousOrder returns the religious order named in the text.
func ReligiousOrder(text string) string { return orderTable.first(text) }

const (
	roman        = `[IVXL]+`
	centuryWord  = `(?:siècles?|centur(?:y|ies)|Jh\.|Jahrhundert)`
	// A bare "(I-II)" is a volume span, so a range needs an "e" suffix or a century word.
	centuryRange = roman + `e\s*[-–]\s*` + roman + `e(?:\s+` + centuryWord + `)?|` +
		roman + `e?\s*[-–]\s*` + roman + `e?\s+` + centuryWord
	centuryOne = roman + `e(?:\s+` + centuryWord + `)?|` + roman + `\s+` + centuryWord
)

var temporalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\((` + centuryRange + `)\)`),
	regexp.MustCompile(`\((` + centuryOne + `)\)`),
	regexp.MustCompile(`\((\d{3,4}\s*[-–]\s*\d{3,4})\)`),
}

// TemporalCoverage returns a parenthetical century or year range such as
// "XIIe-XIIIe siècles" or "1050-1250".
func TemporalCoverage(text string) string {
	return firstGroup(temporalPatterns, text)
}

var documentTable = keywordTable{
	stemRule(record.DocumentCartulary, "cartulaire", "cartulary", "cartularium", "chartularium", "cartulario", "kartular", "tumbo", "becerro"),
	stemRule(record.DocumentCharter, "charte", "charter", "oorkonde", "urkunde", "diplomata"),
	stemRule(record.DocumentActs, "actes", "acta", "acts"),
	stemRule(record.DocumentRegister, "registre", "register", "registrum", "regeste", "regesta"),
	stemRule(record.DocumentCatalogue, "catalogue", "catalog", "inventaire", "inventory"),
	stemRule(record.DocumentCollection, "recueil", "collection", "sammlung"),
	stemRule(record.DocumentHistory, "histoire", "history", "geschiedenis", "geschichte", "historia"),
}

// DocumentType returns the kind of source the citation describes.
func DocumentType(text string) string { return documentTable.first(text) }
