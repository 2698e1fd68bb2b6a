package job

import (
	"fmt"

	"github.com/mitchellh/hashstructure/v2"
)

// Fingerprint computes a stable content hash of v, suitable for logging a
// change-tracking signature alongside a job's configuration. This module
// never uses the fingerprint to skip re-running a job: that would require
// persisting state across executor runs, which is out of scope.
func Fingerprint(v interface{}) (string, error) {
	h, err := hashstructure.Hash(v, hashstructure.FormatV2, nil)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h), nil
}
