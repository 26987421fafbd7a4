package domain

import (
	"fmt"
	"strings"
)

// AnimalSchema returns the rule table for the cattle registry. Tag numbers are
// unique per tenant.
func AnimalSchema() Schema[Animal] {
	return Schema[Animal]{
		Collection: CollectionAnimals,
		Required: []FieldRule[Animal]{
			{Field: "tag_number", Message: "tag number is required", Valid: func(a Animal) bool {
				return strings.TrimSpace(a.TagNumber) != ""
			}},
			{Field: "type", Message: "animal type is required", Valid: func(a Animal) bool {
				return a.Type != ""
			}},
		},
		Rules: []FieldRule[Animal]{
			{Field: "weight_kg", Message: "weight cannot be negative", Valid: func(a Animal) bool {
				return a.WeightKG >= 0
			}},
		},
		NaturalKey: func(a Animal) (string, bool) {
			tag := strings.TrimSpace(a.TagNumber)
			if tag == "" {
				return "", false
			}
			return "tag " + tag, true
		},
	}
}

// MilkSessionSchema returns the rule table for milk production logs. At most
// one entry exists per tenant, date, and milking session.
func MilkSessionSchema() Schema[MilkSession] {
	return Schema[MilkSession]{
		Collection: CollectionMilkSessions,
		Required: []FieldRule[MilkSession]{
			{Field: "date", Message: "date is required", Valid: func(m MilkSession) bool {
				return strings.TrimSpace(m.Date) != ""
			}},
			{Field: "session", Message: "milking session is required", Valid: func(m MilkSession) bool {
				return m.Session != ""
			}},
			{Field: "volume_liters", Message: "volume is required", Valid: func(m MilkSession) bool {
				return m.VolumeLiters != 0
			}},
		},
		Rules: []FieldRule[MilkSession]{
			{Field: "volume_liters", Message: "volume must be positive", Valid: func(m MilkSession) bool {
				return m.VolumeLiters > 0
			}},
			{Field: "cow_count", Message: "cow count cannot be negative", Valid: func(m MilkSession) bool {
				return m.CowCount >= 0
			}},
		},
		NaturalKey: func(m MilkSession) (string, bool) {
			if strings.TrimSpace(m.Date) == "" || m.Session == "" {
				return "", false
			}
			return fmt.Sprintf("%s %s", m.Date, m.Session), true
		},
	}
}

// DeliverySchema returns the rule table for delivery tracking, including the
// pickup-before-delivery cross-field rule.
func DeliverySchema() Schema[Delivery] {
	return Schema[Delivery]{
		Collection: CollectionDeliveries,
		Required: []FieldRule[Delivery]{
			{Field: "customer", Message: "customer is required", Valid: func(d Delivery) bool {
				return strings.TrimSpace(d.Customer) != ""
			}},
			{Field: "product", Message: "product is required", Valid: func(d Delivery) bool {
				return strings.TrimSpace(d.Product) != ""
			}},
			{Field: "scheduled_pickup_time", Message: "pickup time is required", Valid: func(d Delivery) bool {
				return !d.ScheduledPickupTime.IsZero()
			}},
			{Field: "scheduled_delivery_time", Message: "delivery time is required", Valid: func(d Delivery) bool {
				return !d.ScheduledDeliveryTime.IsZero()
			}},
		},
		Rules: []FieldRule[Delivery]{
			{Field: "scheduled_delivery_time", Message: "must be after pickup time", Valid: func(d Delivery) bool {
				if d.ScheduledPickupTime.IsZero() || d.ScheduledDeliveryTime.IsZero() {
					return true
				}
				return d.ScheduledDeliveryTime.After(d.ScheduledPickupTime)
			}},
			{Field: "quantity_kg", Message: "quantity cannot be negative", Valid: func(d Delivery) bool {
				return d.QuantityKG >= 0
			}},
		},
	}
}

// InventoryItemSchema returns the rule table for inventory stock lines. SKUs,
// when present, are unique per tenant.
func InventoryItemSchema() Schema[InventoryItem] {
	return Schema[InventoryItem]{
		Collection: CollectionInventoryItems,
		Required: []FieldRule[InventoryItem]{
			{Field: "name", Message: "item name is required", Valid: func(i InventoryItem) bool {
				return strings.TrimSpace(i.Name) != ""
			}},
			{Field: "unit", Message: "unit of measure is required", Valid: func(i InventoryItem) bool {
				return strings.TrimSpace(i.Unit) != ""
			}},
		},
		Rules: []FieldRule[InventoryItem]{
			{Field: "quantity", Message: "quantity cannot be negative", Valid: func(i InventoryItem) bool {
				return i.Quantity >= 0
			}},
			{Field: "reorder_level", Message: "reorder level cannot be negative", Valid: func(i InventoryItem) bool {
				return i.ReorderLevel >= 0
			}},
		},
		NaturalKey: func(i InventoryItem) (string, bool) {
			sku := strings.TrimSpace(i.SKU)
			if sku == "" {
				return "", false
			}
			return "sku " + sku, true
		},
	}
}

// QualityCheckSchema returns the rule table for quality-control measurements,
// including the min/max range cross-field rule.
func QualityCheckSchema() Schema[QualityCheck] {
	return Schema[QualityCheck]{
		Collection: CollectionQualityChecks,
		Required: []FieldRule[QualityCheck]{
			{Field: "batch_id", Message: "batch is required", Valid: func(q QualityCheck) bool {
				return strings.TrimSpace(q.BatchID) != ""
			}},
			{Field: "parameter", Message: "parameter is required", Valid: func(q QualityCheck) bool {
				return strings.TrimSpace(q.Parameter) != ""
			}},
			{Field: "result", Message: "result is required", Valid: func(q QualityCheck) bool {
				return q.Result != ""
			}},
		},
		Rules: []FieldRule[QualityCheck]{
			{Field: "value", Message: "value is outside the allowed range", Valid: func(q QualityCheck) bool {
				if q.MinValue != nil && q.Value < *q.MinValue {
					return false
				}
				if q.MaxValue != nil && q.Value > *q.MaxValue {
					return false
				}
				return true
			}},
			{Field: "max_value", Message: "range maximum must not be below minimum", Valid: func(q QualityCheck) bool {
				if q.MinValue == nil || q.MaxValue == nil {
					return true
				}
				return *q.MaxValue >= *q.MinValue
			}},
		},
	}
}

// SalesProposalSchema returns the rule table for sales proposals.
func SalesProposalSchema() Schema[SalesProposal] {
	return Schema[SalesProposal]{
		Collection: CollectionSalesProposals,
		Required: []FieldRule[SalesProposal]{
			{Field: "customer", Message: "customer is required", Valid: func(p SalesProposal) bool {
				return strings.TrimSpace(p.Customer) != ""
			}},
			{Field: "lines", Message: "at least one line item is required", Valid: func(p SalesProposal) bool {
				return len(p.Lines) > 0
			}},
		},
		Rules: []FieldRule[SalesProposal]{
			{Field: "lines", Message: "line quantities and prices cannot be negative", Valid: func(p SalesProposal) bool {
				for _, line := range p.Lines {
					if line.Quantity < 0 || line.UnitPrice < 0 {
						return false
					}
				}
				return true
			}},
		},
	}
}

// EmployeeSchema returns the rule table for HR employee records. Employee
// numbers are unique per tenant.
func EmployeeSchema() Schema[Employee] {
	return Schema[Employee]{
		Collection: CollectionEmployees,
		Required: []FieldRule[Employee]{
			{Field: "employee_number", Message: "employee number is required", Valid: func(e Employee) bool {
				return strings.TrimSpace(e.EmployeeNumber) != ""
			}},
			{Field: "name", Message: "name is required", Valid: func(e Employee) bool {
				return strings.TrimSpace(e.Name) != ""
			}},
			{Field: "role", Message: "role is required", Valid: func(e Employee) bool {
				return strings.TrimSpace(e.Role) != ""
			}},
		},
		Rules: []FieldRule[Employee]{
			{Field: "monthly_salary", Message: "salary cannot be negative", Valid: func(e Employee) bool {
				return e.MonthlySalary >= 0
			}},
		},
		NaturalKey: func(e Employee) (string, bool) {
			number := strings.TrimSpace(e.EmployeeNumber)
			if number == "" {
				return "", false
			}
			return "employee " + number, true
		},
	}
}

// PayrollEntrySchema returns the rule table for payroll entries, including the
// net-not-above-gross cross-field rule. One entry exists per employee and
// period.
func PayrollEntrySchema() Schema[PayrollEntry] {
	return Schema[PayrollEntry]{
		Collection: CollectionPayrollEntries,
		Required: []FieldRule[PayrollEntry]{
			{Field: "employee_id", Message: "employee is required", Valid: func(p PayrollEntry) bool {
				return strings.TrimSpace(p.EmployeeID) != ""
			}},
			{Field: "period", Message: "pay period is required", Valid: func(p PayrollEntry) bool {
				return strings.TrimSpace(p.Period) != ""
			}},
			{Field: "gross_amount", Message: "gross amount is required", Valid: func(p PayrollEntry) bool {
				return p.GrossAmount != 0
			}},
		},
		Rules: []FieldRule[PayrollEntry]{
			{Field: "gross_amount", Message: "gross amount must be positive", Valid: func(p PayrollEntry) bool {
				return p.GrossAmount > 0
			}},
			{Field: "net_amount", Message: "net amount cannot exceed gross", Valid: func(p PayrollEntry) bool {
				return p.NetAmount <= p.GrossAmount
			}},
			{Field: "deductions", Message: "deductions cannot be negative", Valid: func(p PayrollEntry) bool {
				return p.Deductions >= 0
			}},
		},
		NaturalKey: func(p PayrollEntry) (string, bool) {
			if strings.TrimSpace(p.EmployeeID) == "" || strings.TrimSpace(p.Period) == "" {
				return "", false
			}
			return fmt.Sprintf("%s %s", p.EmployeeID, p.Period), true
		},
	}
}

// ScholarshipSchema returns the rule table for scholarship records, including
// the period-end-after-start cross-field rule.
func ScholarshipSchema() Schema[Scholarship] {
	return Schema[Scholarship]{
		Collection: CollectionScholarships,
		Required: []FieldRule[Scholarship]{
			{Field: "student_name", Message: "student name is required", Valid: func(s Scholarship) bool {
				return strings.TrimSpace(s.StudentName) != ""
			}},
			{Field: "sponsor", Message: "sponsor is required", Valid: func(s Scholarship) bool {
				return strings.TrimSpace(s.Sponsor) != ""
			}},
			{Field: "amount", Message: "amount is required", Valid: func(s Scholarship) bool {
				return s.Amount != 0
			}},
		},
		Rules: []FieldRule[Scholarship]{
			{Field: "amount", Message: "amount must be positive", Valid: func(s Scholarship) bool {
				return s.Amount > 0
			}},
			{Field: "period_end", Message: "period end must be after period start", Valid: func(s Scholarship) bool {
				if s.PeriodStart.IsZero() || s.PeriodEnd.IsZero() {
					return true
				}
				return s.PeriodEnd.After(s.PeriodStart)
			}},
		},
	}
}

// HandbookSectionSchema returns the rule table for staff-handbook sections.
// Slugs are unique per tenant.
func HandbookSectionSchema() Schema[HandbookSection] {
	return Schema[HandbookSection]{
		Collection: CollectionHandbookSections,
		Required: []FieldRule[HandbookSection]{
			{Field: "title", Message: "title is required", Valid: func(h HandbookSection) bool {
				return strings.TrimSpace(h.Title) != ""
			}},
			{Field: "body", Message: "body is required", Valid: func(h HandbookSection) bool {
				return strings.TrimSpace(h.Body) != ""
			}},
		},
		NaturalKey: func(h HandbookSection) (string, bool) {
			slug := strings.TrimSpace(h.Slug)
			if slug == "" {
				return "", false
			}
			return "slug " + slug, true
		},
	}
}
