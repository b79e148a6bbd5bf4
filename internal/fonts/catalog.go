package fonts

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Info describes one installed font for catalog listings.
type Info struct {
	Filename    string `json:"filename"`
	DisplayName string `json:"displayName"`
}

// List returns the .ttf/.otf files in the fonts directory sorted by display
// name. A non-empty query keeps only fonts whose filename or display name
// contains it, case-insensitively. A missing directory yields an empty list.
func (p *Provider) List(query string) ([]Info, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	query = strings.ToLower(query)
	var fonts []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}
		info := Info{Filename: name, DisplayName: displayName(name)}
		if query != "" &&
			!strings.Contains(strings.ToLower(info.Filename), query) &&
			!strings.Contains(strings.ToLower(info.DisplayName), query) {
			continue
		}
		fonts = append(fonts, info)
	}

	slices.SortStableFunc(fonts, func(a, b Info) int {
		return strings.Compare(a.DisplayName, b.DisplayName)
	})
	return fonts, nil
}

// displayName derives a human-readable name from a font filename:
// separators become spaces, the NerdFontPropo marker is dropped, and
// whitespace runs collapse. Falls back to the raw stem.
func displayName(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	name := strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	name = strings.ReplaceAll(name, "NerdFontPropo", "")
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return stem
	}
	return name
}
