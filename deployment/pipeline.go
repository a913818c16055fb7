package deployment

import (
	"context"
	"fmt"

	"github.com/0xPolygon/claimdeployer/claims"
	"github.com/0xPolygon/claimdeployer/export"
	"github.com/0xPolygon/claimdeployer/log"
	"github.com/0xPolygon/claimdeployer/params"
	"github.com/0xPolygon/claimdeployer/reconcile"
	"github.com/0xPolygon/claimdeployer/settings"
	"github.com/0xPolygon/claimdeployer/tree"
)

// Input of a pipeline run
type Input struct {
	ClaimsPath   string
	SettingsPath string
	Identity     params.Identity
	// Verify checks the deployment recorded in the settings instead of deploying
	Verify bool
}

// Result of a successful pipeline run
type Result struct {
	Handle     ContractHandle
	Commitment *tree.Commitment
	Parameters params.ParameterSet
	// Report is set when verifying
	Report *reconcile.Report
}

// Pipeline runs settings → claims → commitment → parameters → deploy or verify → export.
// Nothing is exported unless every previous step succeeded.
type Pipeline struct {
	registry     *params.Registry
	orchestrator *Orchestrator
	exporter     *export.Exporter
	logger       *log.Logger
}

// NewPipeline returns a pipeline
func NewPipeline(
	registry *params.Registry, orchestrator *Orchestrator, exporter *export.Exporter, logger *log.Logger,
) *Pipeline {
	return &Pipeline{
		registry:     registry,
		orchestrator: orchestrator,
		exporter:     exporter,
		logger:       logger,
	}
}

// Run executes the whole workflow
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	p.logger.Infof("reading settings from %s", in.SettingsPath)
	st, unused, err := settings.LoadFile(in.SettingsPath)
	if err != nil {
		return nil, err
	}
	if len(unused) > 0 {
		p.logger.Debugf("settings entries not used: %v", unused)
	}

	p.logger.Infof("reading user claims from %s", in.ClaimsPath)
	table, err := claims.ParseCSVFile(in.ClaimsPath)
	if err != nil {
		return nil, err
	}

	p.logger.Infof("generating merkle proofs for %d claims", table.Len())
	commitment, err := tree.Commit(ctx, table)
	if err != nil {
		return nil, err
	}
	p.logger.Infof("merkle root: %s, depth: %d", commitment.Root.Hex(), commitment.Depth)

	set, err := p.registry.Derive(in.Identity, st, commitment.Root)
	if err != nil {
		return nil, err
	}
	p.logger.Infow("the following deployment parameters will be used", set.Fields()...)

	result := &Result{Commitment: commitment, Parameters: set}
	mode := export.ModeDeploy
	if in.Verify {
		mode = export.ModeVerify
		handle, err := p.orchestrator.Load(in.Identity, st)
		if err != nil {
			return nil, err
		}
		report, err := p.orchestrator.Verify(ctx, handle, set)
		if err != nil {
			return nil, err
		}
		p.logger.Infof("verified %s at %s: all parameters match", handle.Identity, handle.Address.Hex())
		result.Handle = handle
		result.Report = &report
	} else {
		handle, err := p.orchestrator.Deploy(ctx, in.Identity, set)
		if err != nil {
			return nil, err
		}
		result.Handle = handle
	}

	record := export.AddressRecord{
		Identity:   string(result.Handle.Identity),
		Address:    result.Handle.Address,
		MerkleRoot: commitment.Root,
		Mode:       mode,
	}
	if err := p.exporter.Export(commitment, record); err != nil {
		return nil, fmt.Errorf("exporting claims: %w", err)
	}
	return result, nil
}
