package handler

import (
	"net/http"

	"valentine/internal/theme"
)

type themeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Emoji      string `json:"emoji"`
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
}

// ListThemes serves the palettes a creator can pick from.
func ListThemes(w http.ResponseWriter, r *http.Request) {
	all := theme.All()
	out := make([]themeDTO, 0, len(all))
	for _, t := range all {
		out = append(out, themeDTO{
			ID:         t.ID,
			Name:       t.Name,
			Emoji:      t.Emoji,
			Primary:    t.Primary.Hex(),
			Secondary:  t.Secondary.Hex(),
			Background: t.Background.Hex(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
