package claims

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gocarina/gocsv"
	"github.com/holiman/uint256"
)

var (
	ErrMalformedClaim   = errors.New("malformed claim")
	ErrDuplicateAccount = errors.New("duplicate account")
)

// Table is a validated set of claims in canonical order (ascending account bytes)
type Table struct {
	claims []Claim
	index  map[common.Address]int
}

// Load validates the records and returns them as a canonically ordered table.
// A single invalid record fails the whole load.
func Load(records []Record) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: claim table is empty", ErrMalformedClaim)
	}
	seen := make(map[common.Address]int, len(records))
	claims := make([]Claim, 0, len(records))
	for i, r := range records {
		row := i + 1
		claim, err := parseRecord(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if prev, ok := seen[claim.Account]; ok {
			return nil, fmt.Errorf("row %d: %w: %s already claimed at row %d",
				row, ErrDuplicateAccount, claim.Account.Hex(), prev)
		}
		seen[claim.Account] = row
		claims = append(claims, claim)
	}

	sort.Slice(claims, func(i, j int) bool {
		return bytes.Compare(claims[i].Account[:], claims[j].Account[:]) < 0
	})
	index := make(map[common.Address]int, len(claims))
	for i, c := range claims {
		index[c.Account] = i
	}
	return &Table{claims: claims, index: index}, nil
}

// ParseCSV reads records with the header account,amount[,type] and loads them
func ParseCSV(r io.Reader) (*Table, error) {
	records := []Record{}
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedClaim, err)
	}
	return Load(records)
}

// ParseCSVFile is ParseCSV over the file at path
func ParseCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func parseRecord(r Record) (Claim, error) {
	account := strings.TrimSpace(r.Account)
	if !common.IsHexAddress(account) {
		return Claim{}, fmt.Errorf("%w: invalid account %q", ErrMalformedClaim, r.Account)
	}
	amount, err := ParseAmount(r.Amount)
	if err != nil {
		return Claim{}, err
	}
	claimType, err := ParseClaimType(r.Type)
	if err != nil {
		return Claim{}, fmt.Errorf("%w: %w", ErrMalformedClaim, err)
	}
	return Claim{
		Account: common.HexToAddress(account),
		Type:    claimType,
		Amount:  amount,
	}, nil
}

// ParseAmount parses a base-10 unsigned integer that fits in 256 bits
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("%w: invalid amount %q", ErrMalformedClaim, s)
	}
	amount, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid amount %q: %w", ErrMalformedClaim, s, err)
	}
	return amount.ToBig(), nil
}

// Len returns the number of claims
func (t *Table) Len() int {
	return len(t.claims)
}

// Claims returns a copy of the claims in canonical order
func (t *Table) Claims() []Claim {
	out := make([]Claim, len(t.claims))
	for i, c := range t.claims {
		out[i] = Claim{Account: c.Account, Type: c.Type, Amount: new(big.Int).Set(c.Amount)}
	}
	return out
}

// At returns the claim at the canonical position i
func (t *Table) At(i int) Claim {
	c := t.claims[i]
	return Claim{Account: c.Account, Type: c.Type, Amount: new(big.Int).Set(c.Amount)}
}

// Find returns the canonical position of the account's claim
func (t *Table) Find(account common.Address) (int, bool) {
	i, ok := t.index[account]
	return i, ok
}
