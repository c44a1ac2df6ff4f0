package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

var agentRequestColumns = []string{"ID", "Name", "Email", "Region", "Status", "Reason", "Created"}

func agentRequestRow(request bizapi.AgentRequest) []string {
	return []string{
		request.ID,
		request.Name,
		request.Email,
		request.Region,
		string(request.Status),
		request.Reason,
		formatTime(request.CreatedAt),
	}
}

// NewAgentRequestsCommand creates the agent-requests command group.
func NewAgentRequestsCommand() *cobra.Command {
	spec := &resourceSpec[bizapi.AgentRequest]{
		name:     "agent-requests",
		singular: "agent request",
		aliases:  []string{"agent-request", "ar"},
		entity:   bizapi.EntityAgentRequests,
		resource: func(cli bizapi.Client) bizapi.ResourceClient[bizapi.AgentRequest] {
			return cli.AgentRequests()
		},
		columns: agentRequestColumns,
		row:     agentRequestRow,
	}

	cmd := newResourceCommand(spec)
	cmd.AddCommand(newAgentRequestApproveCommand(spec))
	cmd.AddCommand(newAgentRequestRejectCommand(spec))

	return cmd
}

func newAgentRequestApproveCommand(spec *resourceSpec[bizapi.AgentRequest]) *cobra.Command {
	return &cobra.Command{
		Use:   "approve ID",
		Short: "Approve a pending agent request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := CreateClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			request, err := resultValue(cli.AgentRequests().Approve(cmd.Context(), args[0]))
			if err != nil {
				return err
			}

			return reportReview(cmd, spec, request)
		},
	}
}

func newAgentRequestRejectCommand(spec *resourceSpec[bizapi.AgentRequest]) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject ID",
		Short: "Reject a pending agent request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if reason == "" {
				return constants.ErrReasonRequired
			}

			cli, err := CreateClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			request, err := resultValue(cli.AgentRequests().Reject(cmd.Context(), args[0], reason))
			if err != nil {
				return err
			}

			return reportReview(cmd, spec, request)
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", "", "why the request is rejected (required)")

	return cmd
}

func reportReview(cmd *cobra.Command, spec *resourceSpec[bizapi.AgentRequest], request bizapi.AgentRequest) error {
	if structuredOutput() {
		return renderItem(cmd.OutOrStdout(), spec, request)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Agent request %s from %s is %s\n", request.ID, request.Name, request.Status)

	return nil
}
