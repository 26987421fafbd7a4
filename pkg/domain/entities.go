// Package domain defines the persistent record types, per-collection schemas,
// change events, and error taxonomy shared by the agricore record stores.
package domain

import "time"

// CollectionName identifies a logical record collection in the remote store.
type CollectionName string

// Supported collection identifiers used in change events and persistence buckets.
const (
	// CollectionAnimals identifies the cattle registry.
	CollectionAnimals CollectionName = "animals"
	// CollectionMilkSessions identifies milk production log entries.
	CollectionMilkSessions CollectionName = "milk_sessions"
	// CollectionDeliveries identifies delivery tracking records.
	CollectionDeliveries CollectionName = "deliveries"
	// CollectionInventoryItems identifies inventory stock records.
	CollectionInventoryItems CollectionName = "inventory_items"
	// CollectionQualityChecks identifies quality-control checklist entries.
	CollectionQualityChecks CollectionName = "quality_checks"
	// CollectionSalesProposals identifies sales proposal records.
	CollectionSalesProposals CollectionName = "sales_proposals"
	// CollectionEmployees identifies HR employee records.
	CollectionEmployees CollectionName = "employees"
	// CollectionPayrollEntries identifies payroll period records.
	CollectionPayrollEntries CollectionName = "payroll_entries"
	// CollectionScholarships identifies scholarship administration records.
	CollectionScholarships CollectionName = "scholarships"
	// CollectionHandbookSections identifies staff handbook sections.
	CollectionHandbookSections CollectionName = "handbook_sections"
)

// Record is the constraint satisfied by every collection record type. The
// self-referential parameter lets generic stores return typed copies without
// reflection: identity assignment and cloning are value operations that never
// alias the caller's record.
type Record[T any] interface {
	// RecordID returns the store-assigned identifier, empty before creation.
	RecordID() string
	// TenantKey returns the owning tenant (farm) identifier.
	TenantKey() string
	// Created returns the creation timestamp assigned by the store.
	Created() time.Time
	// WithIdentity returns a copy carrying the assigned identity and audit fields.
	WithIdentity(id, tenant string, now time.Time) T
	// WithUpdated returns a copy with the update timestamp advanced.
	WithUpdated(now time.Time) T
	// Clone returns a deep copy safe to hand across store boundaries.
	Clone() T
}

// Base carries the identifier, tenant key, and audit timestamps shared by all
// record types. The remote store owns all four fields.
type Base struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordID returns the store-assigned identifier.
func (b Base) RecordID() string { return b.ID }

// TenantKey returns the owning tenant identifier.
func (b Base) TenantKey() string { return b.TenantID }

// Created returns the creation timestamp.
func (b Base) Created() time.Time { return b.CreatedAt }

// Updated returns the last-modified timestamp.
func (b Base) Updated() time.Time { return b.UpdatedAt }

func (b Base) withIdentity(id, tenant string, now time.Time) Base {
	b.ID = id
	b.TenantID = tenant
	b.CreatedAt = now
	b.UpdatedAt = now
	return b
}

// AnimalType distinguishes herd roles in the cattle registry.
type AnimalType string

// Canonical animal types tracked by the registry.
const (
	AnimalMotherCow AnimalType = "mother_cow"
	AnimalHeifer    AnimalType = "heifer"
	AnimalBull      AnimalType = "bull"
	AnimalCalf      AnimalType = "calf"
)

// Animal is one head of cattle in the registry.
type Animal struct {
	Base
	TagNumber   string     `json:"tag_number"`
	Name        string     `json:"name,omitempty"`
	Type        AnimalType `json:"type"`
	Breed       string     `json:"breed,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	WeightKG    float64    `json:"weight_kg,omitempty"`
	MotherTag   *string    `json:"mother_tag,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// WithIdentity returns a copy carrying store-assigned identity fields.
func (a Animal) WithIdentity(id, tenant string, now time.Time) Animal {
	a.Base = a.Base.withIdentity(id, tenant, now)
	return a
}

// WithUpdated returns a copy with the update timestamp advanced.
func (a Animal) WithUpdated(now time.Time) Animal {
	a.UpdatedAt = now
	return a
}

// Clone returns a deep copy of the animal record.
func (a Animal) Clone() Animal {
	if a.DateOfBirth != nil {
		dob := *a.DateOfBirth
		a.DateOfBirth = &dob
	}
	if a.MotherTag != nil {
		tag := *a.MotherTag
		a.MotherTag = &tag
	}
	return a
}

// MilkingSession names the milking slot of a production log entry.
type MilkingSession string

// Recognised milking sessions; at most one entry exists per date and session.
const (
	SessionMorning MilkingSession = "morning"
	SessionMidday  MilkingSession = "midday"
	SessionEvening MilkingSession = "evening"
)

// MilkSession is one milking run's production log entry.
type MilkSession struct {
	Base
	Date         string         `json:"date"` // calendar day, YYYY-MM-DD
	Session      MilkingSession `json:"session"`
	VolumeLiters float64        `json:"volume_liters"`
	CowCount     int            `json:"cow_count,omitempty"`
	FatPercent   float64        `json:"fat_percent,omitempty"`
	Notes        string         `json:"notes,omitempty"`
}

// WithIdentity returns a copy carrying store-assigned identity fields.
func (m MilkSession) WithIdentity(id, tenant string, now time.Time) MilkSession {
	m.Base = m.Base.withIdentity(id, tenant, now)
	return m
}

// WithUpdated returns a copy with the update timestamp advanced.
func (m MilkSession) WithUpdated(now time.Time) MilkSession {
	m.UpdatedAt = now
	return m
}

// Clone returns a copy of the milk session entry.
func (m MilkSession) Clone() MilkSession { return m }

// DeliveryStatus tracks a delivery through its lifecycle.
type DeliveryStatus string

// Canonical delivery statuses.
const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryInTransit DeliveryStatus = "in_transit"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryCancelled DeliveryStatus = "cancelled"
)

// Delivery is one outbound delivery tracking record.
type Delivery struct {
	Base
	Customer              string         `json:"customer"`
	Address               string         `json:"address,omitempty"`
	Product               string         `json:"product"`
	QuantityKG            float64        `json:"quantity_kg,omitempty"`
	ScheduledPickupTime   time.Time      `json:"scheduled_pickup_time"`
	ScheduledDeliveryTime time.Time      `json:"scheduled_delivery_time"`
	Status                DeliveryStatus `json:"status"`
	DriverName            string         `json:"driver_name,omitempty"`
	Notes                 string         `json:"notes,omitempty"`
}

// WithIdentity returns a copy carrying store-assigned identity fields.
func (d Delivery) WithIdentity(id, tenant string, now time.Time) Delivery {
	d.Base = d.Base.withIdentity(id, tenant, now)
	return d
}

// WithUpdated returns a copy with the update timestamp advanced.
func (d Delivery) WithUpdated(now time.Time) Delivery {
	d.UpdatedAt = now
	return d
}

// Clone returns a copy of the delivery record.
func (d Delivery) Clone() Delivery { return d }

// InventoryItem is one stock line in the farm inventory.
type InventoryItem struct {
	Base
	Name         string  `json:"name"`
	SKU          string  `json:"sku,omitempty"`
	Category     string  `json:"category,omitempty"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	ReorderLevel float64 `json:"reorder_level,omitempty"`
	UnitCost     float64 `json:"unit_cost,omitempty"`
	Supplier     string  `json:"supplier,omitempty"`
}

// WithIdentity returns a copy carrying store-assigned identity fields.
func (i InventoryItem) WithIdentity(id, tenant string, now time.Time) InventoryItem {
	i.Base = i.Base.withIdentity(id, tenant, now)
	return i
}

// WithUpdated returns a copy with the update timestamp advanced.
func (i InventoryItem) WithUpdated(now time.Time) InventoryItem {
	i.UpdatedAt = now
	return i
}

// Clone returns a copy of the inventory item.
func (i InventoryItem) Clone() InventoryItem { return i }

// QualityResult is the verdict of one quality-control measurement.
type QualityResult string

// Canonical quality check results.
const (
	QualityPassed QualityResult = "passed"
	QualityFailed QualityResult = "failed"
	QualityHold   QualityResult = "hold"
)

// QualityCheck is one quality-control checklist measurement for a batch.
type QualityCheck struct {
	Base
	BatchID   string        `json:"batch_id"`
	Parameter string        `json:"parameter"`
	Value     float64       `json:"value"`
	MinValue  *float64      `json:"min_value,omitempty"`
	MaxValue  *float64      `json:"max_value,omitempty"`
	Result    QualityResult `json:"result"`
	CheckedBy string        `json:"checked_by,omitempty"`
	Notes     string        `json:"notes,omitempty"`
}

// WithIdentity returns a copy carrying store-assigned identity fields.
func (q QualityCheck) WithIdentity(id, tenant string, now time.Time) QualityCheck {
	q.Base = q.Base.withIdentity(id, tenant, now)
	return q
}

// WithUpdated returns a copy with the update timestamp advanced.
func (q QualityCheck) WithUpdated(now time.Time) QualityCheck {
	q.UpdatedAt = now
	return q
}

// Clone returns a deep copy of the quality check.
func (q QualityCheck) Clone() QualityCheck {
	if q.MinValue != nil {
		v := *q.MinValue
		q.MinValue = &v
	}
	if q.MaxValue != nil {
		v := *q.MaxValue
		q.MaxValue = &v
	}
	return q
}

// ProposalLine is one priced line item of a sales proposal.
type ProposalLine struct {
	Product   string  `json:"product"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Total returns the line amount.
func (l ProposalLine) Total() float64 { return l.Quantity * l.UnitPrice }

// SalesProposal is a customer quotation composed of priced line items.
type SalesProposal struct {
	Base
	Customer     string         `json:"customer"`
	ContactEmail string         `json:"contact_email,omitempty"`
	Lines        []ProposalLine `json:"lines"`
	Currency     string         `json:"currency,omitempty"`
	ValidUntil   *time.Time     `json:"valid_until,omitempty"`
	Accepted     bool           `json:"accepted,omitempty"`
	Notes        string         `json:"notes,omitempty"`
}

// WithIdentity returns a copy carrying store-assigned identity fields.
func (p SalesProposal) WithIdentity(id, tenant string, now time.Time) SalesProposal {
	p.Base = p.Base.withIdentity(id, tenant, now)
	return p
}

// WithUpdated returns a copy with the update timestamp advanced.
func (p SalesProposal) WithUpdated(now time.Time) SalesProposal {
	p.UpdatedAt = now
	return p
}

// Clone returns a deep copy of the proposal, including its line items.
func (p SalesProposal) Clone() SalesProposal {
	p.Lines = append([]ProposalLine(nil), p.Lines...)
	if p.ValidUntil != nil {
		v := *p.ValidUntil
		p.ValidUntil = &v
	}
	return p
}

// TotalAmount returns the sum of all line totals.
func (p SalesProposal) TotalAmount() float64 {
	var total float64
	for _, line := range p.Lines {
		total += line.Total()
	}
	return total
}

// Employee is one HR staff record.
type Employee struct {
	Base
	EmployeeNumber string     `json:"employee_number"`
	Name           string     `json:"name"`
	Role           string     `json:"role"`
	Department     string     `json:"department,omitempty"`
	HiredAt        *time.Time `json:"hired_at,omitempty"`
	MonthlySalary  float64    `json:"monthly_salary,omitempty"`
	Active         bool       `json:"active"`
}

// WithIdentity returns a copy carrying store-assigned identity fields.
func (e Employee) WithIdentity(id, tenant string, now time.Time) Employee {
	e.Base = e.Base.withIdentity(id, tenant, now)
	return e
}

// WithUpdated returns a copy with the update timestamp advanced.
func (e Employee) WithUpdated(now time.Time) Employee {
	e.UpdatedAt = now
	return e
}

// Clone returns a deep copy of the employee record.
func (e Employee) Clone() Employee {
	if e.HiredAt != nil {
		v := *e.HiredAt
		e.HiredAt = &v
	}
	return e
}

// PayrollEntry is one employee's pay for one period.
type PayrollEntry struct {
	Base
	EmployeeID  string     `json:"employee_id"`
	Period      string     `json:"period"` // YYYY-MM
	GrossAmount float64    `json:"gross_amount"`
	Deductions  float64    `json:"deductions,omitempty"`
	NetAmount   float64    `json:"net_amount"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

// WithIdentity returns a copy carrying store-assigned identity fields.
func (p PayrollEntry) WithIdentity(id, tenant string, now time.Time) PayrollEntry {
	p.Base = p.Base.withIdentity(id, tenant, now)
	return p
}

// WithUpdated returns a copy with the update timestamp advanced.
func (p PayrollEntry) WithUpdated(now time.Time) PayrollEntry {
	p.UpdatedAt = now
	return p
}

// Clone returns a deep copy of the payroll entry.
func (p PayrollEntry) Clone() PayrollEntry {
	if p.PaidAt != nil {
		v := *p.PaidAt
		p.PaidAt = &v
	}
	return p
}

// Scholarship is one sponsored-student administration record.
type Scholarship struct {
	Base
	StudentName string    `json:"student_name"`
	School      string    `json:"school,omitempty"`
	Sponsor     string    `json:"sponsor"`
	Amount      float64   `json:"amount"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Disbursed   bool      `json:"disbursed,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// WithIdentity returns a copy carrying store-assigned identity fields.
func (s Scholarship) WithIdentity(id, tenant string, now time.Time) Scholarship {
	s.Base = s.Base.withIdentity(id, tenant, now)
	return s
}

// WithUpdated returns a copy with the update timestamp advanced.
func (s Scholarship) WithUpdated(now time.Time) Scholarship {
	s.UpdatedAt = now
	return s
}

// Clone returns a copy of the scholarship record.
func (s Scholarship) Clone() Scholarship { return s }

// HandbookSection is one staff-handbook section keyed by slug.
type HandbookSection struct {
	Base
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Tags     []string `json:"tags,omitempty"`
	Ordering int      `json:"ordering,omitempty"`
}

// WithIdentity returns a copy carrying store-assigned identity fields.
func (h HandbookSection) WithIdentity(id, tenant string, now time.Time) HandbookSection {
	h.Base = h.Base.withIdentity(id, tenant, now)
	return h
}

// WithUpdated returns a copy with the update timestamp advanced.
func (h HandbookSection) WithUpdated(now time.Time) HandbookSection {
	h.UpdatedAt = now
	return h
}

// Clone returns a deep copy of the handbook section.
func (h HandbookSection) Clone() HandbookSection {
	h.Tags = append([]string(nil), h.Tags...)
	return h
}
