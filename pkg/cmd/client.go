package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/trackerops/tracker-audit/pkg/tracker"
)

// buildClient assembles an API client from the active context plus any
// flag/env overrides.
func (rt *runtimeState) buildClient(logger *zap.SugaredLogger) (*tracker.Client, error) {
	ctx, err := rt.ResolveContext()
	if err != nil {
		return nil, err
	}

	orgID := rt.orgOverride
	orgType := rt.orgTypeOverride
	endpoint := rt.endpointOverride
	rate := 0.0
	maxRetries := 0
	contextName := rt.ResolveContextName()
	if ctx != nil {
		if orgID == "" {
			orgID = ctx.OrgID
		}
		if orgType == "" {
			orgType = ctx.OrgType
		}
		if endpoint == "" {
			endpoint = ctx.Endpoint
		}
		rate = ctx.Rate
		maxRetries = ctx.MaxRetries
		contextName = ctx.Name
	}
	if orgID == "" {
		return nil, fmt.Errorf("no organization id configured")
	}

	token, err := rt.resolveToken(contextName)
	if err != nil {
		return nil, err
	}

	opts := []tracker.Option{
		tracker.WithToken(token),
		tracker.WithOrg(orgID, parseOrgType(orgType)),
		tracker.WithLogger(logger),
	}
	if endpoint != "" {
		opts = append(opts, tracker.WithBaseURL(endpoint))
	}
	if rate > 0 {
		opts = append(opts, tracker.WithRate(rate))
	}
	if maxRetries > 0 {
		opts = append(opts, tracker.WithMaxRetries(maxRetries))
	}
	return tracker.New(opts...)
}

func parseOrgType(s string) tracker.OrgType {
	if s == string(tracker.OrgTypeCloud) {
		return tracker.OrgTypeCloud
	}
	return tracker.OrgTypeStandard
}
