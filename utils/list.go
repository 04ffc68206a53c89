package utils

import (
	"fmt"
)

// StrSliceHasItem checks item for presence in slice
func StrSliceHasItem(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// StrSliceDeduplicate removes duplicates from slice, keeping first occurrence order
func StrSliceDeduplicate(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]struct{}, len(s))

	for _, item := range s {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}

	return result
}

// StringsIsSubset checks that subset is strict subset of full, and returns
// error formatted with errorFmt otherwise
func StringsIsSubset(subset []string, full []string, errorFmt string) error {
	for _, checked := range subset {
		found := false
		for _, s := range full {
			if checked == s {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf(errorFmt, checked)
		}
	}
	return nil
}
