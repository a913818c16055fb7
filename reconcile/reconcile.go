package reconcile

import (
	"errors"
	"fmt"

	"github.com/0xPolygon/claimdeployer/params"
	"github.com/ethereum/go-ethereum/common"
)

var ErrParameterMismatch = errors.New("parameter mismatch")

// Mismatch is the first parameter whose observed value differs from the expected one
type Mismatch struct {
	Field    string
	Expected string
	Observed string
}

// Report is the outcome of reconciling a deployment
type Report struct {
	Identity params.Identity
	Address  common.Address
	// Mismatch is nil when every parameter matches
	Mismatch *Mismatch
}

// OK reports whether the deployment matches
func (r Report) OK() bool {
	return r.Mismatch == nil
}

// Err returns nil when the deployment matches, a *MismatchError otherwise
func (r Report) Err() error {
	if r.Mismatch == nil {
		return nil
	}
	return &MismatchError{Identity: r.Identity, Address: r.Address, Mismatch: *r.Mismatch}
}

// MismatchError carries the first mismatching parameter. It matches ErrParameterMismatch.
type MismatchError struct {
	Identity params.Identity
	Address  common.Address
	Mismatch
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("bad parameter detected on %s at %s: expected parameter %s to be %s, found %s",
		e.Identity, e.Address.Hex(), e.Field, e.Expected, e.Observed)
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrParameterMismatch
}

// Reconcile compares the observed parameters against the expected ones, in the
// expected order, and stops at the first mismatch. Observed parameters are
// looked up by name; a missing or unreadable one is a mismatch.
func Reconcile(id params.Identity, addr common.Address, expected, observed params.ParameterSet) Report {
	report := Report{Identity: id, Address: addr}
	for _, exp := range expected {
		want, err := Canonical(exp.Type, exp.Value)
		if err != nil {
			want = fmt.Sprintf("<invalid: %v>", err)
		}
		obs, ok := observed.Get(exp.Name)
		if !ok {
			report.Mismatch = &Mismatch{Field: exp.Name, Expected: want, Observed: "<missing>"}
			return report
		}
		got, errObs := Canonical(exp.Type, obs.Value)
		if errObs != nil {
			report.Mismatch = &Mismatch{Field: exp.Name, Expected: want, Observed: fmt.Sprintf("<invalid: %v>", errObs)}
			return report
		}
		if err != nil || want != got {
			report.Mismatch = &Mismatch{Field: exp.Name, Expected: want, Observed: got}
			return report
		}
	}
	return report
}

// Check is Reconcile returning the mismatch as an error
func Check(id params.Identity, addr common.Address, expected, observed params.ParameterSet) error {
	return Reconcile(id, addr, expected, observed).Err()
}
