package fatvol

import (
	"errors"
	"io"
	"path"

	"github.com/aligator/fatvol/checkpoint"
	"github.com/spf13/afero"
)

// ErrExtract is returned if the contents of a file cannot be copied out of
// the volume.
var ErrExtract = errors.New("could not extract the file")

// extractChain streams size bytes from the cluster chain starting at
// cluster to w. Every full cluster is read from the volume and only the
// still needed part of the final one is written out. The copy stops early
// if the chain terminates or points to cluster 0 before size bytes were
// seen, exactly like a chain walker has to.
func (v *Volume) extractChain(w io.Writer, cluster fatEntry, size uint32) error {
	follower := newChainFollower(v, cluster)
	current := cluster.maskedValue()
	remaining := int64(size)
	buffer := make([]byte, v.info.bytesPerCluster)

	for remaining > 0 && !current.ReadAsEOF() && current.Value() != 0 {
		if err := v.readAt(v.clusterOffset(current), buffer); err != nil {
			return checkpoint.Wrap(err, ErrExtract)
		}

		chunk := remaining
		if chunk > v.info.bytesPerCluster {
			chunk = v.info.bytesPerCluster
		}

		if _, err := w.Write(buffer[:chunk]); err != nil {
			return checkpoint.Wrap(err, ErrExtract)
		}
		remaining -= chunk

		if remaining == 0 {
			break
		}

		next, ok, err := follower.next(current)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		current = next
	}

	return nil
}

// ExtractTo resolves the given slash separated short name path, creates
// <outputDir>/<NAME>.<EXT> on the destination filesystem and copies the
// file contents into it. A pre-existing file at the destination is
// overwritten. It returns the path of the created file.
// The destination name is always the dotted short name, never a long name.
func (v *Volume) ExtractTo(destination afero.Fs, outputDir string, sourcePath string) (string, error) {
	entry, err := v.Resolve(sourcePath)
	if err != nil {
		return "", err
	}

	if err := destination.MkdirAll(outputDir, 0o755); err != nil {
		return "", checkpoint.Wrap(err, ErrExtract)
	}

	destinationPath := path.Join(outputDir, entry.DisplayName())
	out, err := destination.Create(destinationPath)
	if err != nil {
		return "", checkpoint.Wrap(err, ErrExtract)
	}

	if err := v.extractChain(out, entry.FirstCluster(), entry.FileSize); err != nil {
		out.Close()
		return "", err
	}

	if err := out.Close(); err != nil {
		return "", checkpoint.Wrap(err, ErrExtract)
	}

	return destinationPath, nil
}
