package domain

import (
	"testing"
	"time"
)

func TestWithIdentityAssignsAuditFields(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	animal := Animal{TagNumber: "T1", Type: AnimalHeifer}.WithIdentity("a-1", "farm-1", now)
	if animal.ID != "a-1" || animal.TenantID != "farm-1" {
		t.Fatalf("identity not applied: %+v", animal.Base)
	}
	if !animal.CreatedAt.Equal(now) || !animal.UpdatedAt.Equal(now) {
		t.Fatalf("audit timestamps not applied: %+v", animal.Base)
	}

	later := now.Add(time.Hour)
	animal = animal.WithUpdated(later)
	if !animal.CreatedAt.Equal(now) || !animal.UpdatedAt.Equal(later) {
		t.Fatalf("update timestamp not advanced: %+v", animal.Base)
	}
}

func TestCloneIsolatesPointersAndSlices(t *testing.T) {
	tag := "M1"
	original := Animal{TagNumber: "T1", MotherTag: &tag}
	clone := original.Clone()
	*clone.MotherTag = "changed"
	if *original.MotherTag != "M1" {
		t.Fatalf("clone shares mother tag pointer")
	}

	proposal := SalesProposal{Lines: []ProposalLine{{Product: "milk", Quantity: 1, UnitPrice: 2}}}
	proposalClone := proposal.Clone()
	proposalClone.Lines[0].Quantity = 99
	if proposal.Lines[0].Quantity != 1 {
		t.Fatalf("clone shares line slice")
	}

	section := HandbookSection{Tags: []string{"safety"}}
	sectionClone := section.Clone()
	sectionClone.Tags[0] = "changed"
	if section.Tags[0] != "safety" {
		t.Fatalf("clone shares tag slice")
	}
}

func TestSalesProposalTotalAmount(t *testing.T) {
	proposal := SalesProposal{Lines: []ProposalLine{
		{Product: "cheese", Quantity: 2, UnitPrice: 10},
		{Product: "milk", Quantity: 5, UnitPrice: 1.5},
	}}
	if got := proposal.TotalAmount(); got != 27.5 {
		t.Fatalf("unexpected total %v", got)
	}
}
