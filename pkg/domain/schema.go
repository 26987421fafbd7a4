package domain

// ValidationResult is the verdict of running a collection schema against a
// record. FieldErrors is nil when the record is valid.
type ValidationResult struct {
	Valid       bool
	FieldErrors map[string]string
}

// Err converts an invalid result into a ValidationError for the collection.
// Valid results yield nil.
func (r ValidationResult) Err(collection CollectionName) error {
	if r.Valid {
		return nil
	}
	return ValidationError{Collection: collection, FieldErrors: r.FieldErrors}
}

// FieldRule checks one field of a record. Valid returns false when the rule is
// violated; Message explains the violation to the user.
type FieldRule[T any] struct {
	Field   string
	Message string
	Valid   func(T) bool
}

// Schema is the closed rule table for one collection: required-field checks,
// cross-field rules, and an optional natural key used by the uniqueness
// precheck. Validation is a pure function over the typed record.
type Schema[T Record[T]] struct {
	Collection CollectionName
	// Required rules fire when a mandatory field is missing or zero.
	Required []FieldRule[T]
	// Rules carries cross-field and range constraints, evaluated after the
	// required checks regardless of their outcome so all messages surface in
	// one pass.
	Rules []FieldRule[T]
	// NaturalKey extracts the uniqueness-precheck key. It returns false when
	// the record carries no natural key (precheck skipped).
	NaturalKey func(T) (string, bool)
}

// Validate runs every required and cross-field rule against rec and collects
// per-field messages. The first message per field wins.
func (s Schema[T]) Validate(rec T) ValidationResult {
	var fieldErrors map[string]string
	record := func(field, message string) {
		if fieldErrors == nil {
			fieldErrors = make(map[string]string)
		}
		if _, exists := fieldErrors[field]; !exists {
			fieldErrors[field] = message
		}
	}
	for _, rule := range s.Required {
		if !rule.Valid(rec) {
			record(rule.Field, rule.Message)
		}
	}
	for _, rule := range s.Rules {
		if !rule.Valid(rec) {
			record(rule.Field, rule.Message)
		}
	}
	if fieldErrors != nil {
		return ValidationResult{Valid: false, FieldErrors: fieldErrors}
	}
	return ValidationResult{Valid: true}
}

// Key returns the natural key of rec, or false when the schema defines none or
// the record leaves it unset.
func (s Schema[T]) Key(rec T) (string, bool) {
	if s.NaturalKey == nil {
		return "", false
	}
	return s.NaturalKey(rec)
}
