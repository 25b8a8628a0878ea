// Package pipeline runs the synchronous stage agent chain and merges agent
// results into the shared evaluation context.
package pipeline

import (
	"time"

	"github.com/careops/referralos/pkg/models"
)

// Apply merges one agent result into the context. Decisions overwrite by key,
// patch fields win over existing case values, actions append in order with
// exact duplicates suppressed, and a valid result state replaces the current
// one. Applying the same result twice leaves the context unchanged.
func Apply(ectx *models.Context, result models.AgentResult) {
	if ectx.Decisions == nil {
		ectx.Decisions = make(map[string]bool)
	}

	for key, value := range result.Decisions {
		ectx.Decisions[key] = value
	}

	if result.Patch != nil {
		applyPatch(&ectx.Case, result.Patch)
	}

	for _, action := range result.Actions {
		if !hasAction(ectx.Actions, action) {
			ectx.Actions = append(ectx.Actions, action)
		}
	}

	if result.State.Valid() {
		ectx.State = result.State
		ectx.Case.State = result.State
	}

	reconcile(&ectx.Case)
}

func hasAction(actions []models.Action, candidate models.Action) bool {
	for _, action := range actions {
		if action.Equal(candidate) {
			return true
		}
	}

	return false
}

func applyPatch(c *models.Case, patch *models.CasePatch) {
	if p := patch.Patient; p != nil {
		setString(&c.Patient.Name, p.Name)
		setTime(&c.Patient.DOB, p.DOB)
		setString(&c.Patient.Address, p.Address)
		setString(&c.Patient.City, p.City)
		setString(&c.Patient.Zip, p.Zip)
		setString(&c.Patient.Phone, p.Phone)
	}

	if p := patch.Payer; p != nil {
		setString(&c.Payer.Name, p.Name)
		setString(&c.Payer.PlanType, p.PlanType)
		setString(&c.Payer.MemberID, p.MemberID)

		if p.InsuranceActive != nil {
			c.Payer.InsuranceActive = *p.InsuranceActive
		}
	}

	if p := patch.Referral; p != nil {
		setString(&c.Referral.RequestedService, p.RequestedService)
		setString(&c.Referral.Source, p.Source)

		if p.Urgency != nil {
			c.Referral.Urgency = *p.Urgency
		}
	}

	if p := patch.Auth; p != nil {
		if p.Required != nil {
			c.Auth.Required = *p.Required
		}

		if p.Status != nil {
			c.Auth.Status = *p.Status
		}

		setString(&c.Auth.Number, p.Number)
		setTime(&c.Auth.StartDate, p.StartDate)
		setTime(&c.Auth.EndDate, p.EndDate)

		if p.UnitsRemaining != nil {
			c.Auth.UnitsRemaining = *p.UnitsRemaining
		}
	}

	if p := patch.Assessment; p != nil {
		if p.Status != nil {
			c.Assessment.Status = *p.Status
		}

		setTime(&c.Assessment.Date, p.Date)
	}

	if p := patch.Eligibility; p != nil {
		if p.Status != nil {
			c.Eligibility.Status = *p.Status
		}
	}

	if p := patch.Scheduling; p != nil {
		if p.Status != nil {
			c.Scheduling.Status = *p.Status
		}

		setTime(&c.Scheduling.ScheduledDate, p.ScheduledDate)
		setString(&c.Scheduling.CaregiverID, p.CaregiverID)
	}
}

// reconcile fills derived fields after a merge so later agents see a
// consistent case. A missing member id falls back to the authorization
// number, then the case id. An assessment with a date but no status counts
// as complete.
func reconcile(c *models.Case) {
	if c.Payer.MemberID == "" {
		switch {
		case c.Auth.Number != "":
			c.Payer.MemberID = c.Auth.Number
		case c.ID != "":
			c.Payer.MemberID = c.ID
		}
	}

	if c.Assessment.Status == models.AssessmentUnknown && c.Assessment.Date != nil {
		c.Assessment.Status = models.AssessmentComplete
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setTime(dst **time.Time, src *time.Time) {
	if src != nil {
		*dst = src
	}
}
