package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/arcanaland/cardsight/internal/card"
	"github.com/arcanaland/cardsight/internal/catalog"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

// Validator checks a template catalog directory
type Validator struct {
	CatalogPath string
	// CardBack is the base name of the card back image, which is not a
	// template.
	CardBack string
	Results  ValidationResults
}

func NewValidator(catalogPath, cardBack string) *Validator {
	return &Validator{
		CatalogPath: catalogPath,
		CardBack:    cardBack,
		Results:     ValidationResults{},
	}
}

func (v *Validator) Validate() (ValidationResults, error) {
	if _, err := os.Stat(v.CatalogPath); os.IsNotExist(err) {
		return v.Results, fmt.Errorf("catalog directory not found: %s", v.CatalogPath)
	}

	v.validateManifest()
	files, err := catalog.ImageFiles(v.CatalogPath)
	if err != nil {
		return v.Results, err
	}
	if len(files) == 0 {
		v.Results.Errors = append(v.Results.Errors, "no card images found")
		return v.Results, nil
	}

	found := v.validateImages(files)
	v.validateStandardCards(found)
	v.validateCardBack(found)

	return v.Results, nil
}

func (v *Validator) validateManifest() {
	m, err := catalog.ReadManifest(v.CatalogPath)
	if err != nil {
		v.Results.Errors = append(v.Results.Errors, err.Error())
		return
	}
	if m == nil {
		v.Results.Warnings = append(v.Results.Warnings, catalog.ManifestFile+" not found")
		return
	}
	if m.Catalog.ID == "" {
		v.Results.Errors = append(v.Results.Errors, "catalog.id is required in "+catalog.ManifestFile)
	}
	if m.Catalog.Name == "" {
		v.Results.Errors = append(v.Results.Errors, "catalog.name is required in "+catalog.ManifestFile)
	}
	if m.Catalog.CardBack != "" {
		v.CardBack = m.Catalog.CardBack
	}
}

// validateImages decodes every image and checks that all templates share
// one non-zero size. It returns the names that decoded.
func (v *Validator) validateImages(files []string) map[string]bool {
	found := make(map[string]bool, len(files))
	sizes := make(map[[2]int][]string)

	for _, path := range files {
		name := catalog.NameOf(path)
		if found[name] {
			v.Results.Errors = append(v.Results.Errors,
				fmt.Sprintf("duplicate card name: %s (%s)", name, filepath.Base(path)))
			continue
		}

		img, err := catalog.LoadImage(path)
		if err != nil {
			v.Results.Errors = append(v.Results.Errors,
				fmt.Sprintf("unreadable image %s: %v", filepath.Base(path), err))
			continue
		}
		found[name] = true

		b := img.Bounds()
		if b.Empty() {
			v.Results.Errors = append(v.Results.Errors,
				fmt.Sprintf("image %s has zero width or height", filepath.Base(path)))
			continue
		}
		if name == v.CardBack {
			continue
		}
		size := [2]int{b.Dx(), b.Dy()}
		sizes[size] = append(sizes[size], name)
	}

	if len(sizes) > 1 {
		keys := make([][2]int, 0, len(sizes))
		for k := range sizes {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if len(sizes[keys[i]]) != len(sizes[keys[j]]) {
				return len(sizes[keys[i]]) > len(sizes[keys[j]])
			}
			return keys[i][0] < keys[j][0] || keys[i][0] == keys[j][0] && keys[i][1] < keys[j][1]
		})
		for _, k := range keys[1:] {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("%d images are %dx%d, most are %dx%d: %v",
					len(sizes[k]), k[0], k[1], keys[0][0], keys[0][1], sizes[k]))
		}
	}
	return found
}

// validateStandardCards requires all 52 standard names and flags names
// the value rule cannot score.
func (v *Validator) validateStandardCards(found map[string]bool) {
	standard := make(map[string]bool)
	for _, name := range card.StandardNames() {
		standard[name] = true
		if !found[name] {
			v.Results.Errors = append(v.Results.Errors, fmt.Sprintf("missing card: %s", name))
		}
	}

	var unknown []string
	for name := range found {
		if !standard[name] && name != v.CardBack {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		if card.Value(name) == 0 {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("unknown card %s will count as 0", name))
		} else {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("non-standard card name: %s", name))
		}
	}
}

func (v *Validator) validateCardBack(found map[string]bool) {
	if v.CardBack == "" || found[v.CardBack] {
		return
	}
	v.Results.Warnings = append(v.Results.Warnings,
		fmt.Sprintf("card back image %q not found, the draw pile will not be drawn", v.CardBack))
}
