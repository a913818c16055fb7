package claims

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ClaimType is the kind of allocation a claim redeems
type ClaimType uint8

const (
	Airdrop ClaimType = iota
	GnoOption
	UserOption
	Investor
	Team
	Advisor
)

var claimTypeNames = map[ClaimType]string{
	Airdrop:    "Airdrop",
	GnoOption:  "GnoOption",
	UserOption: "UserOption",
	Investor:   "Investor",
	Team:       "Team",
	Advisor:    "Advisor",
}

func (c ClaimType) String() string {
	if name, ok := claimTypeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ClaimType(%d)", uint8(c))
}

// MarshalText writes the claim type by name
func (c ClaimType) MarshalText() ([]byte, error) {
	if _, ok := claimTypeNames[c]; !ok {
		return nil, fmt.Errorf("unknown claim type %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// ParseClaimType accepts the type name (case insensitive) or its numeric value.
// An empty string is an Airdrop.
func ParseClaimType(s string) (ClaimType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Airdrop, nil
	}
	for t, name := range claimTypeNames {
		if strings.EqualFold(name, s) || fmt.Sprint(uint8(t)) == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown claim type %q", s)
}

// Claim is an entitlement of one account to an amount of tokens
type Claim struct {
	Account common.Address
	Type    ClaimType
	Amount  *big.Int
}

func (c Claim) String() string {
	return fmt.Sprintf("Claim{Account: %s, Type: %s, Amount: %s}", c.Account.Hex(), c.Type, c.Amount)
}

// Record is a raw row of the claim source
type Record struct {
	Account string `csv:"account"`
	Amount  string `csv:"amount"`
	Type    string `csv:"type,omitempty"`
}
