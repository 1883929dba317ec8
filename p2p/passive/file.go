package passive

import (
	"pvnode/util"

	"bytes"
	"crypto/sha256"
	"fmt"
	"io/ioutil"
	"os"

	"halftwo/mangos/vbs"
	"halftwo/mangos/xerr"
)

/* Loading & Saving */

// On disk a table is a sha256 checksum of the body followed by the vbs
// encoded body. A mismatching checksum is reported as corruption; the
// caller decides whether to start fresh.

func writeChecksummed(filePath string, body []byte) error {
	sum := sha256.Sum256(body)
	payload := make([]byte, 0, len(sum)+len(body))
	payload = append(payload, sum[:]...)
	payload = append(payload, body...)
	return util.WriteFileAtomic(filePath, payload, 0644)
}

// readChecksummed returns (nil, false, nil) if the file does not exist.
func readChecksummed(filePath string) ([]byte, bool, error) {
	payload, err := ioutil.ReadFile(filePath)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if len(payload) < sha256.Size {
		return nil, false, fmt.Errorf("File %s is truncated", filePath)
	}

	body := payload[sha256.Size:]
	sum := sha256.Sum256(body)
	if !bytes.Equal(sum[:], payload[:sha256.Size]) {
		return nil, false, fmt.Errorf("File %s has a bad checksum", filePath)
	}
	return body, true, nil
}

// SaveAddrsToFile persists an address snapshot. The snapshot was taken
// under the manager lock; everything here runs outside it.
func SaveAddrsToFile(filePath string, s *Snapshot) error {
	bz, err := s.Marshal()
	if err != nil {
		return err
	}
	return writeChecksummed(filePath, bz)
}

// LoadAddrsFromFile returns ok=false if the file does not exist.
func LoadAddrsFromFile(filePath string) (*Snapshot, bool, error) {
	body, ok, err := readChecksummed(filePath)
	if !ok || err != nil {
		return nil, false, err
	}

	s, err := UnmarshalSnapshot(body)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// SaveBansToFile persists a ban-table snapshot.
func SaveBansToFile(filePath string, bans map[string]*BanEntry) error {
	bz, err := vbs.Marshal(bans)
	if err != nil {
		return xerr.Trace(err, "Could not marshal ban table")
	}
	return writeChecksummed(filePath, bz)
}

// LoadBansFromFile returns ok=false if the file does not exist.
func LoadBansFromFile(filePath string) (map[string]*BanEntry, bool, error) {
	body, ok, err := readChecksummed(filePath)
	if !ok || err != nil {
		return nil, false, err
	}

	bans := make(map[string]*BanEntry)
	if err := vbs.Unmarshal(body, &bans); err != nil {
		return nil, false, xerr.Trace(err, "Could not unmarshal ban table")
	}
	return bans, true, nil
}
