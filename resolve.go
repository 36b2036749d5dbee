package fatvol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aligator/fatvol/checkpoint"
)

// ErrNotFound is returned if a path cannot be resolved on the volume.
var ErrNotFound = errors.New("file not found on the volume")

// Resolve walks the given slash separated path of short names down to the
// entry of the target file. Directory components are matched against the
// 8 character name part, the final component against the dotted 8.3 name,
// both exactly as stored on disk. Long names never take part in resolution.
func (v *Volume) Resolve(path string) (ExtendedEntryHeader, error) {
	var components []string
	for _, component := range strings.Split(path, "/") {
		if component != "" {
			components = append(components, component)
		}
	}

	if len(components) == 0 {
		return ExtendedEntryHeader{}, checkpoint.Wrap(ErrNotFound, fmt.Errorf("empty path %q", path))
	}

	return v.resolve(v.info.RootCluster, components, 0)
}

func (v *Volume) resolve(cluster fatEntry, components []string, depth int) (ExtendedEntryHeader, error) {
	var found *ExtendedEntryHeader
	var descended error
	target := components[0]
	final := len(components) == 1

	err := v.walkDir(cluster, depth, func(entry ExtendedEntryHeader) (bool, error) {
		switch {
		case !final && entry.isVisibleDir():
			if entry.BaseName() != target {
				return false, nil
			}

			// A matched directory ends the search in this one, even if the
			// rest of the path turns out not to exist below it.
			child, err := v.resolve(entry.FirstCluster(), components[1:], depth+1)
			if err != nil {
				descended = err
				return true, nil
			}
			found = &child
			return true, nil
		case final && entry.isVisibleFile():
			if entry.DisplayName() != target {
				return false, nil
			}

			match := entry
			found = &match
			return true, nil
		}

		return false, nil
	})
	if err != nil {
		return ExtendedEntryHeader{}, err
	}
	if descended != nil {
		return ExtendedEntryHeader{}, descended
	}

	if found == nil {
		return ExtendedEntryHeader{}, checkpoint.Wrap(ErrNotFound, fmt.Errorf("no entry named %q", target))
	}

	return *found, nil
}
