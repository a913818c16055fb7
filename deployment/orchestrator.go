package deployment

import (
	"context"
	"fmt"

	"github.com/0xPolygon/claimdeployer/log"
	"github.com/0xPolygon/claimdeployer/params"
	"github.com/0xPolygon/claimdeployer/reconcile"
	"github.com/0xPolygon/claimdeployer/settings"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/0xPolygon/claimdeployer/deployment"

// Orchestrator deploys contracts on a ledger or verifies existing ones.
// Ledger calls are never retried: a failed construction may still have happened.
type Orchestrator struct {
	registry *params.Registry
	ledger   Ledger
	logger   *log.Logger
	meter    metric.Meter
}

// NewOrchestrator returns an orchestrator over the ledger
func NewOrchestrator(registry *params.Registry, ledger Ledger, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		ledger:   ledger,
		logger:   logger,
		meter:    otel.Meter(meterName),
	}
}

// Deploy constructs a contract of the identity with the given parameters
func (o *Orchestrator) Deploy(ctx context.Context, id params.Identity, set params.ParameterSet) (ContractHandle, error) {
	schema, err := o.registry.Schema(id)
	if err != nil {
		return ContractHandle{}, err
	}
	o.logger.Infof("deploying %s (schema v%d)", id, schema.Version)
	addr, err := o.ledger.Construct(ctx, schema, set)
	if err != nil {
		return ContractHandle{}, fmt.Errorf("%w: %s: %w", ErrDeploymentFailed, id, err)
	}
	o.count(ctx, "contracts_deployed")
	o.logger.Infof("%s deployed at %s", id, addr.Hex())
	return ContractHandle{Identity: id, Address: addr}, nil
}

// Load returns the deployment of the identity recorded in the settings
func (o *Orchestrator) Load(id params.Identity, s *settings.Settings) (ContractHandle, error) {
	schema, err := o.registry.Schema(id)
	if err != nil {
		return ContractHandle{}, err
	}
	if schema.DeploymentKey == "" {
		return ContractHandle{}, fmt.Errorf("%w: %s has no deployment key", ErrMissingDeploymentRecord, id)
	}
	var (
		addr common.Address
		ok   bool
	)
	if s != nil {
		addr, ok = s.Address(schema.DeploymentKey)
	}
	if !ok || addr == (common.Address{}) {
		return ContractHandle{}, fmt.Errorf("%w: %s not found in settings (%s), nothing to verify",
			ErrMissingDeploymentRecord, id, schema.DeploymentKey)
	}
	return ContractHandle{Identity: id, Address: addr}, nil
}

// Verify reads the constructor parameters of the deployed contract and reconciles
// them with the expected ones. A mismatch is returned both in the report and as
// an error matching reconcile.ErrParameterMismatch.
func (o *Orchestrator) Verify(
	ctx context.Context, handle ContractHandle, expected params.ParameterSet,
) (reconcile.Report, error) {
	schema, err := o.registry.Schema(handle.Identity)
	if err != nil {
		return reconcile.Report{}, err
	}
	observed, err := o.ledger.ReadConstructorState(ctx, schema, handle.Address)
	if err != nil {
		return reconcile.Report{}, fmt.Errorf("reading parameters of %s at %s: %w",
			handle.Identity, handle.Address.Hex(), err)
	}
	report := reconcile.Reconcile(handle.Identity, handle.Address, expected, observed)
	if !report.OK() {
		o.count(ctx, "parameter_mismatches")
		o.logger.Errorf("%s at %s: parameter %s expected %s, found %s", handle.Identity, handle.Address.Hex(),
			report.Mismatch.Field, report.Mismatch.Expected, report.Mismatch.Observed)
		return report, report.Err()
	}
	o.count(ctx, "deployments_verified")
	return report, nil
}

func (o *Orchestrator) count(ctx context.Context, name string) {
	c, merr := o.meter.Int64Counter(name)
	if merr != nil {
		o.logger.Warnf("failed to create %s counter: %s", name, merr)
		return
	}
	c.Add(ctx, 1)
}
