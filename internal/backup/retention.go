package backup

import "sort"

// SelectForDeletion returns the artifacts of the given kind that fall
// outside the newest `keep`, oldest first. With `keep` or fewer artifacts
// present nothing is selected. Deletion itself is the caller's job and is
// permanent; there is no trash.
func SelectForDeletion(artifacts []Artifact, kind Kind, keep int) []Artifact {
	if keep < 0 {
		keep = 0
	}

	var matching []Artifact
	for _, art := range artifacts {
		if art.Kind == kind {
			matching = append(matching, art)
		}
	}

	if len(matching) <= keep {
		return nil
	}

	sort.Slice(matching, func(i, j int) bool {
		return matching[i].Stamp.Before(matching[j].Stamp)
	})
	return matching[:len(matching)-keep]
}
