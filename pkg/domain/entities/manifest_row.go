package entities

import "strings"

// RecordKind discriminates the manifest record variants. The flat file tags
// every data line with a record type in column 0; rows that are not data
// lines at all (blank separators, legend preamble) are passthrough rows.
type RecordKind int

const (
	RecordUnknown RecordKind = iota
	RecordHeader
	RecordDetail
	RecordOtherCharges
	RecordPassthrough
)

// String method for RecordKind enum
func (k RecordKind) String() string {
	switch k {
	case RecordHeader:
		return "Header"
	case RecordDetail:
		return "Detail"
	case RecordOtherCharges:
		return "OtherCharges"
	case RecordPassthrough:
		return "Passthrough"
	default:
		return "Unknown"
	}
}

// Manifest column positions (0-based) as emitted by the supplier system.
const (
	ColRecordType      = 0
	ColDeliveryAddress = 2
	ColProduct         = 5
	ColPickQuantity    = 6
	ColNetValue        = 7
	ColHandlingUnits   = 15
)

// HandlingUnitSeparator joins multiple handling units in an aggregated
// detail row's handling-unit field.
const HandlingUnitSeparator = "/"

// ManifestRow is one record of the flat-file manifest: an ordered vector of
// positionally addressed string fields, classified once into a RecordKind so
// downstream code never re-inspects column 0.
//
// Raw holds the verbatim source line. It survives until the first mutating
// accessor is called; rows that are never touched serialize back
// byte-identical.
type ManifestRow struct {
	Kind   RecordKind
	Fields []string

	raw string
}

// ClassifyRecord maps the record-type discriminator to a RecordKind
func ClassifyRecord(discriminator string) RecordKind {
	switch discriminator {
	case "1":
		return RecordHeader
	case "2":
		return RecordDetail
	case "3":
		return RecordOtherCharges
	default:
		return RecordUnknown
	}
}

// NewManifestRow creates a classified row from parsed fields and its
// verbatim source line.
func NewManifestRow(fields []string, raw string) ManifestRow {
	kind := RecordUnknown
	if len(fields) > ColRecordType {
		kind = ClassifyRecord(fields[ColRecordType])
	}
	return ManifestRow{Kind: kind, Fields: fields, raw: raw}
}

// NewPassthroughRow wraps a line that is not a data record (blank separator,
// legend preamble). It is emitted verbatim.
func NewPassthroughRow(raw string) ManifestRow {
	return ManifestRow{Kind: RecordPassthrough, raw: raw}
}

// IsDetail reports whether the row is subject to allocation
func (r *ManifestRow) IsDetail() bool {
	return r.Kind == RecordDetail
}

// Raw returns the verbatim source line, or "" if the row has been modified
// (or synthesized) and must be re-serialized from its fields.
func (r *ManifestRow) Raw() string {
	return r.raw
}

// Field returns the field at position i, or "" when the row is too short
func (r *ManifestRow) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// SetField overwrites the field at position i, growing the row if needed,
// and invalidates the cached verbatim line.
func (r *ManifestRow) SetField(i int, value string) {
	if i < 0 {
		return
	}
	for len(r.Fields) <= i {
		r.Fields = append(r.Fields, "")
	}
	r.Fields[i] = value
	r.raw = ""
}

// Product returns the product id field
func (r *ManifestRow) Product() ProductID {
	return ProductID(r.Field(ColProduct))
}

// PickQuantity returns the pick quantity field as written
func (r *ManifestRow) PickQuantity() string {
	return r.Field(ColPickQuantity)
}

// NetValue returns the extended net value field as written
func (r *ManifestRow) NetValue() string {
	return r.Field(ColNetValue)
}

// HandlingUnitField returns the raw handling-unit field, which may join
// several units with "/".
func (r *ManifestRow) HandlingUnitField() string {
	return r.Field(ColHandlingUnits)
}

// HandlingUnits splits the handling-unit field into normalized units,
// preserving manifest order. Empty segments are dropped.
func (r *ManifestRow) HandlingUnits() []HandlingUnit {
	field := r.HandlingUnitField()
	if strings.TrimSpace(field) == "" {
		return nil
	}
	parts := strings.Split(field, HandlingUnitSeparator)
	units := make([]HandlingUnit, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		units = append(units, NormalizeHandlingUnit(p))
	}
	return units
}

// SetHandlingUnit overwrites the handling-unit field with a single unit
func (r *ManifestRow) SetHandlingUnit(hu HandlingUnit) {
	r.SetField(ColHandlingUnits, string(hu))
}

// SetPickQuantity overwrites the pick quantity field
func (r *ManifestRow) SetPickQuantity(formatted string) {
	r.SetField(ColPickQuantity, formatted)
}

// SetNetValue overwrites the net value field
func (r *ManifestRow) SetNetValue(formatted string) {
	r.SetField(ColNetValue, formatted)
}

// Clone returns a deep copy of the row. The copy shares no field storage
// with the original, so split rows can be edited independently.
func (r *ManifestRow) Clone() ManifestRow {
	fields := make([]string, len(r.Fields))
	copy(fields, r.Fields)
	return ManifestRow{Kind: r.Kind, Fields: fields, raw: r.raw}
}
