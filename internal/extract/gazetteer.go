package extract

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Place is what is known about a religious house's location.
type Place struct {
	Region  string `yaml:"region,omitempty"`
	Order   string `yaml:"order,omitempty"`
	Country string `yaml:"country,omitempty"`
}

// Gazetteer maps well-known place names to their region, order and country.
// It is consulted only when the keyword scans find nothing.
type Gazetteer map[string]Place

// DefaultGazetteer returns the built-in gazetteer.
func DefaultGazetteer() Gazetteer {
	return Gazetteer{
		"Cluny":                   {Region: "Bourgogne", Order: "Cluniac", Country: "France"},
		"Cîteaux":                 {Region: "Bourgogne", Order: "Cistercian", Country: "France"},
		"Clairvaux":               {Region: "Champagne", Order: "Cistercian", Country: "France"},
		"Prémontré":               {Region: "Picardie", Order: "Premonstratensian", Country: "France"},
		"Saint-Martin-des-Champs": {Region: "Île-de-France", Order: "Cluniac", Country: "France"},
		"Saint-Germain-des-Prés":  {Region: "Île-de-France", Order: "Benedictine", Country: "France"},
		"Saint-Denis":             {Region: "Île-de-France", Order: "Benedictine", Country: "France"},
		"Pontoise":                {Region: "Île-de-France", Order: "Benedictine", Country: "France"},
		"Villers":                 {Region: "Brabant Wallon", Order: "Cistercian", Country: "Belgium"},
		"Waulsort":                {Region: "Namur", Order: "Benedictine", Country: "Belgium"},
		"Affligem":                {Region: "Brabant Flamand", Order: "Benedictine", Country: "Belgium"},
		"Orval":                   {Region: "Luxembourg", Order: "Cistercian", Country: "Belgium"},
		"Glastonbury":             {Region: "Somerset", Order: "Benedictine", Country: "England"},
	}
}

// Lookup finds a place, ignoring case.
func (g Gazetteer) Lookup(name string) (Place, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Place{}, false
	}
	if p, ok := g[name]; ok {
		return p, true
	}
	for k, p := range g {
		if strings.EqualFold(k, name) {
			return p, true
		}
	}
	return Place{}, false
}

// LoadGazetteer reads a YAML gazetteer and merges it over the defaults.
// Entries in the file replace built-in entries of the same name.
func LoadGazetteer(path string) (Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading gazetteer: %w", err)
	}

	var extra Gazetteer
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parsing gazetteer: %w", err)
	}

	g := DefaultGazetteer()
	for k, v := range extra {
		g[k] = v
	}
	return g, nil
}
