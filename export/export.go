package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/0xPolygon/claimdeployer/log"
	"github.com/0xPolygon/claimdeployer/tree"
	"github.com/ethereum/go-ethereum/common"
)

const (
	AddressesFile = "addresses.json"
	ClaimsFile    = "claims.json"
	MappingFile   = "mapping.json"
	ChunksDir     = "chunks"

	filePerm = 0o644
	dirPerm  = 0o755
)

var ErrClaimNotFound = errors.New("claim not found")

// Exporter writes the claims with their proofs and the deployment record
type Exporter struct {
	cfg    Config
	logger *log.Logger
}

// New returns an exporter writing into cfg.OutputDir
func New(cfg Config, logger *log.Logger) (*Exporter, error) {
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("export: empty output dir")
	}
	if cfg.MaxClaimsPerShard <= 0 {
		return nil, fmt.Errorf("export: MaxClaimsPerShard must be positive, got %d", cfg.MaxClaimsPerShard)
	}
	return &Exporter{cfg: cfg, logger: logger}, nil
}

// Export replaces the previous output with the given commitment and record.
// The same input always produces the same files.
func (e *Exporter) Export(c *tree.Commitment, record AddressRecord) error {
	e.logger.Info("clearing old files...")
	if err := e.clear(); err != nil {
		return err
	}

	e.logger.Info("saving generated data to file...")
	chunksPath := filepath.Join(e.cfg.OutputDir, ChunksDir)
	if err := os.MkdirAll(chunksPath, dirPerm); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(e.cfg.OutputDir, AddressesFile), record.toJSON(), true); err != nil {
		return err
	}

	all := make([]ClaimJSON, len(c.Claims))
	for i, cp := range c.Claims {
		all[i] = newClaimJSON(cp, true)
	}
	if err := writeJSON(filepath.Join(e.cfg.OutputDir, ClaimsFile), all, false); err != nil {
		return err
	}

	mapping := make(map[string]string)
	for start := 0; start < len(c.Claims); start += e.cfg.MaxClaimsPerShard {
		end := start + e.cfg.MaxClaimsPerShard
		if end > len(c.Claims) {
			end = len(c.Claims)
		}
		shard := make(map[string]ClaimJSON, end-start)
		for _, cp := range c.Claims[start:end] {
			shard[accountKey(cp.Account)] = newClaimJSON(cp, false)
		}
		first := accountKey(c.Claims[start].Account)
		name := filepath.ToSlash(filepath.Join(ChunksDir, first+".json"))
		if err := writeJSON(filepath.Join(e.cfg.OutputDir, name), shard, false); err != nil {
			return err
		}
		mapping[first] = name
	}
	if err := writeJSON(filepath.Join(e.cfg.OutputDir, MappingFile), mapping, true); err != nil {
		return err
	}
	e.logger.Infof("exported %d claims in %d chunks to %s", len(c.Claims), len(mapping), e.cfg.OutputDir)
	return nil
}

func (e *Exporter) clear() error {
	for _, name := range []string{AddressesFile, ClaimsFile, MappingFile} {
		if err := os.Remove(filepath.Join(e.cfg.OutputDir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return os.RemoveAll(filepath.Join(e.cfg.OutputDir, ChunksDir))
}

func writeJSON(path string, v interface{}, indent bool) error {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return os.WriteFile(path, data, filePerm)
}

func accountKey(a common.Address) string {
	return strings.ToLower(a.Hex())
}

// FindClaim looks up the claim of the account in the chunks written to dir:
// the chunk is the one with the greatest first account not above the account.
func FindClaim(dir string, account common.Address) (ClaimJSON, error) {
	data, err := os.ReadFile(filepath.Join(dir, MappingFile))
	if err != nil {
		return ClaimJSON{}, err
	}
	mapping := map[string]string{}
	if err := json.Unmarshal(data, &mapping); err != nil {
		return ClaimJSON{}, fmt.Errorf("decoding %s: %w", MappingFile, err)
	}
	firsts := make([]string, 0, len(mapping))
	for first := range mapping {
		firsts = append(firsts, first)
	}
	sort.Strings(firsts)

	key := accountKey(account)
	i := sort.SearchStrings(firsts, key)
	if i == len(firsts) || firsts[i] != key {
		i--
	}
	if i < 0 {
		return ClaimJSON{}, fmt.Errorf("%w: %s", ErrClaimNotFound, key)
	}

	data, err = os.ReadFile(filepath.Join(dir, filepath.FromSlash(mapping[firsts[i]])))
	if err != nil {
		return ClaimJSON{}, err
	}
	shard := map[string]ClaimJSON{}
	if err := json.Unmarshal(data, &shard); err != nil {
		return ClaimJSON{}, fmt.Errorf("decoding chunk %s: %w", mapping[firsts[i]], err)
	}
	c, ok := shard[key]
	if !ok {
		return ClaimJSON{}, fmt.Errorf("%w: %s", ErrClaimNotFound, key)
	}
	c.Account = key
	return c, nil
}
