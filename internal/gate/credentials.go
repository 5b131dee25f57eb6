// Package gate decides whether an inbound generation request may proceed:
// literal credential matching against a startup-loaded allow-list, and a
// per-identity cooldown enforced through a pluggable ledger.
package gate

import (
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
)

// Credential is one identity/secret pair from the allow-list. The set is
// loaded once at startup and never mutated afterwards.
type Credential struct {
	Identity string
	Secret   string
}

// LoadCredentials reads identity,secret rows from the CSV file at path.
// A missing file is an operational condition, not an error: the service
// keeps running with an empty allow-list and authenticates nobody.
// Duplicate identities are kept as-is; Authenticate takes the first match.
func LoadCredentials(path string, logger zerolog.Logger) []Credential {
	if path == "" {
		logger.Warn().Msg("no credentials path configured, allow-list is empty")
		return nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Str("path", path).Msg("credentials file not found, allow-list is empty")
		} else {
			logger.Error().Err(err).Str("path", path).Msg("failed to open credentials file")
		}
		return nil
	}
	defer file.Close()
	return parseCredentials(file, logger)
}

func parseCredentials(r io.Reader, logger zerolog.Logger) []Credential {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var creds []Credential
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn().Err(err).Msg("skipping malformed credentials row")
			continue
		}
		if len(row) < 2 {
			logger.Warn().Int("fields", len(row)).Msg("skipping credentials row with too few fields")
			continue
		}
		creds = append(creds, Credential{Identity: row[0], Secret: row[1]})
	}
	return creds
}
