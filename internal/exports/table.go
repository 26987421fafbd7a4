// Package exports renders record-list snapshots into downloadable artifacts.
// The hand-off contract with the store layer is a flat Table: an ordered
// sequence of rows of stringified fields. Rendering to CSV and JSON lives
// here; richer formats (PDF, XLSX) are external collaborators consuming the
// same Table.
package exports

import (
	"fmt"
	"strconv"
	"time"

	"agricore/pkg/domain"
)

// Table is the flat field-mapping hand-off consumed by format renderers.
type Table struct {
	Collection domain.CollectionName `json:"collection"`
	Columns    []string              `json:"columns"`
	Rows       [][]string            `json:"rows"`
}

// Column maps one record field to a table column.
type Column[T any] struct {
	Name  string
	Value func(T) string
}

// BuildTable flattens records into a Table using the given column set,
// preserving record order.
func BuildTable[T any](collection domain.CollectionName, records []T, columns []Column[T]) Table {
	table := Table{Collection: collection, Columns: make([]string, 0, len(columns))}
	for _, col := range columns {
		table.Columns = append(table.Columns, col.Name)
	}
	table.Rows = make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			row = append(row, col.Value(rec))
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// AnimalColumns is the export column set for the cattle registry.
func AnimalColumns() []Column[domain.Animal] {
	return []Column[domain.Animal]{
		{Name: "tag_number", Value: func(a domain.Animal) string { return a.TagNumber }},
		{Name: "name", Value: func(a domain.Animal) string { return a.Name }},
		{Name: "type", Value: func(a domain.Animal) string { return string(a.Type) }},
		{Name: "breed", Value: func(a domain.Animal) string { return a.Breed }},
		{Name: "date_of_birth", Value: func(a domain.Animal) string { return formatTimePtr(a.DateOfBirth) }},
		{Name: "weight_kg", Value: func(a domain.Animal) string { return formatFloat(a.WeightKG) }},
		{Name: "created_at", Value: func(a domain.Animal) string { return formatTime(a.CreatedAt) }},
	}
}

// MilkSessionColumns is the export column set for milk production logs.
func MilkSessionColumns() []Column[domain.MilkSession] {
	return []Column[domain.MilkSession]{
		{Name: "date", Value: func(m domain.MilkSession) string { return m.Date }},
		{Name: "session", Value: func(m domain.MilkSession) string { return string(m.Session) }},
		{Name: "volume_liters", Value: func(m domain.MilkSession) string { return formatFloat(m.VolumeLiters) }},
		{Name: "cow_count", Value: func(m domain.MilkSession) string { return strconv.Itoa(m.CowCount) }},
		{Name: "fat_percent", Value: func(m domain.MilkSession) string { return formatFloat(m.FatPercent) }},
	}
}

// DeliveryColumns is the export column set for delivery tracking.
func DeliveryColumns() []Column[domain.Delivery] {
	return []Column[domain.Delivery]{
		{Name: "customer", Value: func(d domain.Delivery) string { return d.Customer }},
		{Name: "product", Value: func(d domain.Delivery) string { return d.Product }},
		{Name: "quantity_kg", Value: func(d domain.Delivery) string { return formatFloat(d.QuantityKG) }},
		{Name: "scheduled_pickup_time", Value: func(d domain.Delivery) string { return formatTime(d.ScheduledPickupTime) }},
		{Name: "scheduled_delivery_time", Value: func(d domain.Delivery) string { return formatTime(d.ScheduledDeliveryTime) }},
		{Name: "status", Value: func(d domain.Delivery) string { return string(d.Status) }},
		{Name: "driver_name", Value: func(d domain.Delivery) string { return d.DriverName }},
	}
}

// InventoryItemColumns is the export column set for inventory stock.
func InventoryItemColumns() []Column[domain.InventoryItem] {
	return []Column[domain.InventoryItem]{
		{Name: "name", Value: func(i domain.InventoryItem) string { return i.Name }},
		{Name: "sku", Value: func(i domain.InventoryItem) string { return i.SKU }},
		{Name: "category", Value: func(i domain.InventoryItem) string { return i.Category }},
		{Name: "quantity", Value: func(i domain.InventoryItem) string { return formatFloat(i.Quantity) }},
		{Name: "unit", Value: func(i domain.InventoryItem) string { return i.Unit }},
		{Name: "reorder_level", Value: func(i domain.InventoryItem) string { return formatFloat(i.ReorderLevel) }},
	}
}

// QualityCheckColumns is the export column set for quality-control checks.
func QualityCheckColumns() []Column[domain.QualityCheck] {
	return []Column[domain.QualityCheck]{
		{Name: "batch_id", Value: func(q domain.QualityCheck) string { return q.BatchID }},
		{Name: "parameter", Value: func(q domain.QualityCheck) string { return q.Parameter }},
		{Name: "value", Value: func(q domain.QualityCheck) string { return formatFloat(q.Value) }},
		{Name: "result", Value: func(q domain.QualityCheck) string { return string(q.Result) }},
		{Name: "checked_by", Value: func(q domain.QualityCheck) string { return q.CheckedBy }},
	}
}

// SalesProposalColumns is the export column set for sales proposals.
func SalesProposalColumns() []Column[domain.SalesProposal] {
	return []Column[domain.SalesProposal]{
		{Name: "customer", Value: func(p domain.SalesProposal) string { return p.Customer }},
		{Name: "lines", Value: func(p domain.SalesProposal) string { return strconv.Itoa(len(p.Lines)) }},
		{Name: "total_amount", Value: func(p domain.SalesProposal) string { return formatFloat(p.TotalAmount()) }},
		{Name: "currency", Value: func(p domain.SalesProposal) string { return p.Currency }},
		{Name: "accepted", Value: func(p domain.SalesProposal) string { return strconv.FormatBool(p.Accepted) }},
	}
}

// EmployeeColumns is the export column set for HR records.
func EmployeeColumns() []Column[domain.Employee] {
	return []Column[domain.Employee]{
		{Name: "employee_number", Value: func(e domain.Employee) string { return e.EmployeeNumber }},
		{Name: "name", Value: func(e domain.Employee) string { return e.Name }},
		{Name: "role", Value: func(e domain.Employee) string { return e.Role }},
		{Name: "department", Value: func(e domain.Employee) string { return e.Department }},
		{Name: "active", Value: func(e domain.Employee) string { return strconv.FormatBool(e.Active) }},
	}
}

// PayrollEntryColumns is the export column set for payroll entries.
func PayrollEntryColumns() []Column[domain.PayrollEntry] {
	return []Column[domain.PayrollEntry]{
		{Name: "employee_id", Value: func(p domain.PayrollEntry) string { return p.EmployeeID }},
		{Name: "period", Value: func(p domain.PayrollEntry) string { return p.Period }},
		{Name: "gross_amount", Value: func(p domain.PayrollEntry) string { return formatFloat(p.GrossAmount) }},
		{Name: "deductions", Value: func(p domain.PayrollEntry) string { return formatFloat(p.Deductions) }},
		{Name: "net_amount", Value: func(p domain.PayrollEntry) string { return formatFloat(p.NetAmount) }},
	}
}

// ScholarshipColumns is the export column set for scholarship records.
func ScholarshipColumns() []Column[domain.Scholarship] {
	return []Column[domain.Scholarship]{
		{Name: "student_name", Value: func(s domain.Scholarship) string { return s.StudentName }},
		{Name: "school", Value: func(s domain.Scholarship) string { return s.School }},
		{Name: "sponsor", Value: func(s domain.Scholarship) string { return s.Sponsor }},
		{Name: "amount", Value: func(s domain.Scholarship) string { return formatFloat(s.Amount) }},
		{Name: "period_start", Value: func(s domain.Scholarship) string { return formatTime(s.PeriodStart) }},
		{Name: "period_end", Value: func(s domain.Scholarship) string { return formatTime(s.PeriodEnd) }},
	}
}

// HandbookSectionColumns is the export column set for handbook sections.
func HandbookSectionColumns() []Column[domain.HandbookSection] {
	return []Column[domain.HandbookSection]{
		{Name: "slug", Value: func(h domain.HandbookSection) string { return h.Slug }},
		{Name: "title", Value: func(h domain.HandbookSection) string { return h.Title }},
		{Name: "ordering", Value: func(h domain.HandbookSection) string { return strconv.Itoa(h.Ordering) }},
	}
}

func (t Table) validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d fields, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}
