package util

import (
	"io/ioutil"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes newBytes to a fresh temporary file in the same
// directory and renames it over filePath, so a concurrent reader never
// observes a partially written file.
func WriteFileAtomic(filePath string, newBytes []byte, mode os.FileMode) error {
	dir := filepath.Dir(filePath)
	tmpPath := filepath.Join(dir, "."+filepath.Base(filePath)+"-"+GenerateRandomId(10))

	if err := ioutil.WriteFile(tmpPath, newBytes, mode); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
