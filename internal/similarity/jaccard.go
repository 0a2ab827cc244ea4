// Package similarity scores the overlap between two tag collections.
package similarity

import "slices"

// Jaccard returns |A∩B| / |A∪B| for the sets formed by a and b, together with
// the shared elements sorted ascending. Duplicates within an input are ignored.
// If either set is empty the score is 0 and no tags match. Tags are compared
// byte for byte; no case folding is applied.
func Jaccard(a, b []string) (float64, []string) {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0, []string{}
	}

	// Iterate the smaller set.
	small, large := setA, setB
	if len(small) > len(large) {
		small, large = large, small
	}

	matches := make([]string, 0, len(small))
	for tag := range small {
		if _, ok := large[tag]; ok {
			matches = append(matches, tag)
		}
	}
	slices.Sort(matches)

	union := len(setA) + len(setB) - len(matches)
	return float64(len(matches)) / float64(union), matches
}

func toSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}
