package catalog

import "github.com/agnivade/levenshtein"

// SuggestCrop returns the closest plantable crop id to a misspelled input,
// or "" when nothing is near enough to be a plausible typo.
func (cc *CropCatalog) SuggestCrop(id string) string {
	best := ""
	bestDist := -1
	for _, c := range cc.Plantable() {
		dist := levenshtein.ComputeDistance(id, c.ID)
		if dist > suggestLimit(len(c.ID)) {
			continue
		}
		if bestDist == -1 || dist < bestDist {
			best = c.ID
			bestDist = dist
		}
	}
	return best
}

// SuggestTechnology does the same over a technology list.
func SuggestTechnology(id string, techs []*Technology) string {
	best := ""
	bestDist := -1
	for _, t := range techs {
		dist := levenshtein.ComputeDistance(id, t.ID)
		if dist > suggestLimit(len(t.ID)) {
			continue
		}
		if bestDist == -1 || dist < bestDist {
			best = t.ID
			bestDist = dist
		}
	}
	return best
}

// suggestLimit scales the accepted edit distance with the id length, so
// short ids only match near-exact typos.
func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
