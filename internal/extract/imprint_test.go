package extract

import "testing"

func TestDates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"single year", "DUPONT Jean, Histoire de l'abbaye de Cluny, Paris, Fayard, 1998", "1998"},
		{"range", "DUPONT Jean, Recueil, Paris, 1950-1955", "1950-1955"},
		{"semicolon form wins", "DUPONT Jean, Recueil, Paris, 1890; 1895, 2 vol.", "1895"},
		{"last year wins", "DUPONT Jean, Chartes (1200-1300), Paris, 1990", "1990"},
		{"page numbers skipped", "MARTIN Paul, 'Les biens', dans: Revue, 45 (1990), p. 1012-1034", "1990"},
		{"none", "DUPONT Jean, Recueil", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dates(tt.text); got != tt.want {
				t.Errorf("Dates(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestPlaceAndPublisher(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantPlace     string
		wantPublisher string
	}{
		{"place publisher year", "DUPONT Jean, Histoire de l'abbaye de Cluny, Paris, Fayard, 1998", "Paris", "Fayard"},
		{"hyphenated place", "DUPONT Jean, Les moines, Louvain-la-Neuve, Peeters, 2005", "Louvain-la-Neuve", "Peeters"},
		{"place and year only", "DUPONT Jean, Histoire de Namur, Namur, 1900", "Namur", ""},
		{"none", "MARTIN Paul, 'Les chartes', dans: Revue Historique, 45 (1990), p. 12-34", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			place, publisher := PlaceAndPublisher(tt.text)
			if place != tt.wantPlace || publisher != tt.wantPublisher {
				t.Errorf("PlaceAndPublisher(%q) = %q, %q; want %q, %q", tt.text, place, publisher, tt.wantPlace, tt.wantPublisher)
			}
		})
	}
}

func TestVolumeTomePages(t *testing.T) {
	tests := []struct {
		text       string
		wantVolume string
		wantTome   string
		wantPages  string
	}{
		{"Paris, 1900, 3 vol.", "3 vol.", "", ""},
		{"Paris, 1900, 2 volumes", "2 volumes", "", ""},
		{"MGH, vol. 4, Hannover, 1880", "vol. 4", "", ""},
		{"Leipzig, 1890, 2 Bände", "2 Bände", "", ""},
		{"Paris, V.3, 1900", "V.3", "", ""},
		{"Bruxelles, t. 2, 1900, p. 45", "", "t. 2", "p. 45"},
		{"Paris, tome 3, pp. 5-9", "", "tome 3", "pp. 5-9"},
		{"Urkundenbuch, Band 5, S. 10-20", "", "Band 5", "S. 10-20"},
		{"dans: Revue, 45 (1990), p. 12-34", "", "", "p. 12-34"},
		{"Histoire de Namur, 1900", "", "", ""},
	}
	for _, tt := range tests {
		if got := Volume(tt.text); got != tt.wantVolume {
			t.Errorf("Volume(%q) = %q, want %q", tt.text, got, tt.wantVolume)
		}
		if got := Tome(tt.text); got != tt.wantTome {
			t.Errorf("Tome(%q) = %q, want %q", tt.text, got, tt.wantTome)
		}
		if got := Pages(tt.text); got != tt.wantPages {
			t.Errorf("Pages(%q) = %q, want %q", tt.text, got, tt.wantPages)
		}
	}
}

func TestSeries(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"collection", "Paris, 1900 (Collection de documents inédits sur l'histoire de France)", "Collection de documents inédits sur l'histoire de France"},
		{"longest wins", "Hannover, 1880 (Monumenta Germaniae) (Publications de la Commission royale d'histoire)", "Publications de la Commission royale d'histoire"},
		{"too short", "Paris, 1900 (Series)", ""},
		{"no cue", "Paris, 1900 (réimpr. 1975)", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Series(tt.text); got != tt.want {
				t.Errorf("Series(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
