package client

import (
	"context"
	"net/url"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

// AgentRequestsClient implements bizapi.AgentRequestsClient.
type AgentRequestsClient struct {
	*ResourceClient[bizapi.AgentRequest]
}

// NewAgentRequestsClient creates a new agent requests client.
func NewAgentRequestsClient(requests *bizapi.RequestClient, pagination *bizapi.Registry) *AgentRequestsClient {
	return &AgentRequestsClient{
		ResourceClient: NewResourceClient[bizapi.AgentRequest](requests, pagination, "/api/agent-requests", bizapi.EntityAgentRequests),
	}
}

// Approve accepts a pending agent request.
func (c *AgentRequestsClient) Approve(ctx context.Context, id string) bizapi.Result[bizapi.AgentRequest] {
	if id == "" {
		return bizapi.Failure[bizapi.AgentRequest](constants.ErrIDRequired.Error(), constants.ErrIDRequired)
	}

	return bizapi.PostAs[bizapi.AgentRequest](ctx, c.requests, c.actionPath(id, "approve"), nil)
}

// Reject declines a pending agent request with a reason.
func (c *AgentRequestsClient) Reject(ctx context.Context, id, reason string) bizapi.Result[bizapi.AgentRequest] {
	if id == "" {
		return bizapi.Failure[bizapi.AgentRequest](constants.ErrIDRequired.Error(), constants.ErrIDRequired)
	}

	return bizapi.PostAs[bizapi.AgentRequest](ctx, c.requests, c.actionPath(id, "reject"), &bizapi.RejectRequest{Reason: reason})
}

// CommissionsClient implements bizapi.CommissionsClient.
type CommissionsClient struct {
	*ResourceClient[bizapi.Commission]
}

// NewCommissionsClient creates a new commissions client.
func NewCommissionsClient(requests *bizapi.RequestClient, pagination *bizapi.Registry) *CommissionsClient {
	return &CommissionsClient{
		ResourceClient: NewResourceClient[bizapi.Commission](requests, pagination, "/api/commissions", bizapi.EntityCommissions),
	}
}

// ListByAgent lists the commissions earned by one agent.
func (c *CommissionsClient) ListByAgent(ctx context.Context, agentID string, page int) bizapi.Result[bizapi.PagedList[bizapi.Commission]] {
	return c.list(ctx, page, c.pageSize(), url.Values{"agentId": {agentID}})
}
