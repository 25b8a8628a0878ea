package agents

import "github.com/careops/referralos/pkg/models"

// AuthPendingAgent plans the authorization path. It decides whether the
// requested service needs payer authorization, preferring an explicit intake
// flag over the fixed service list, and queues the submission work item when
// authorization is required.
type AuthPendingAgent struct{}

func NewAuthPendingAgent() *AuthPendingAgent {
	return &AuthPendingAgent{}
}

func (a *AuthPendingAgent) ID() string {
	return "auth_pending"
}

func (a *AuthPendingAgent) Stage() models.PipelineState {
	return models.StateAuthPending
}

func (a *AuthPendingAgent) Run(ectx *models.Context) models.AgentResult {
	c := ectx.Case

	service := c.Referral.RequestedService
	if service == "" {
		return blocked(a.ID(), models.StateAuthPending,
			map[string]bool{"auth_planned": false},
			[]string{"referral.requested_service missing"},
		)
	}

	required := authRequired(c, service)

	var actions []models.Action
	if required {
		actions = append(actions, models.Action{
			Type:   models.ActionSubmitAuth,
			Owner:  "Auth Team",
			Detail: service,
		})
	}

	patch := &models.CasePatch{Auth: &models.AuthPatch{Required: models.Ptr(required)}}

	// Preserve a status the payer already decided; only an undetermined
	// status is (re)planned here.
	switch {
	case !required:
		patch.Auth.Status = models.Ptr(models.AuthStatusNotRequired)
	case c.Auth.Status == models.AuthStatusUnknown || c.Auth.Status == models.AuthStatusNotRequired:
		patch.Auth.Status = models.Ptr(models.AuthStatusPending)
	}

	return models.AgentResult{
		Name:      a.ID(),
		Success:   true,
		State:     models.StateAuthApproved,
		Decisions: map[string]bool{"auth_required": required, "auth_planned": true},
		Patch:     patch,
		Actions:   actions,
	}
}

// authRequired resolves the authorization requirement: an explicit flag or an
// already-running authorization wins; otherwise the fixed service list
// decides.
func authRequired(c models.Case, service string) bool {
	if c.Auth.Status == models.AuthStatusNotRequired {
		return false
	}

	if c.Auth.Required {
		return true
	}

	switch c.Auth.Status {
	case models.AuthStatusPending, models.AuthStatusApproved, models.AuthStatusDenied:
		return true
	}

	_, listed := authRequiredServices[service]

	return listed
}
