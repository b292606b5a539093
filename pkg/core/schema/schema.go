// Package schema resolves arbitrary input column names to the canonical
// campaign field set. Matching is a pure lookup over a static alias table;
// no reflection, no runtime registration.
package schema

import (
	"fmt"
	"strings"
)

// Field is one of the canonical campaign columns.
type Field string

const (
	FieldDate        Field = "date"
	FieldCampaign    Field = "campaign"
	FieldImpressions Field = "impressions"
	FieldClicks      Field = "clicks"
	FieldSpend       Field = "spend"
	FieldConversions Field = "conversions"
	FieldRevenue     Field = "revenue"
)

// RequiredFields are the columns without which no KPI can be computed.
// date, campaign, conversions and revenue are optional: their absence only
// disables the dependent metric family downstream.
var RequiredFields = []Field{FieldImpressions, FieldClicks, FieldSpend}

// aliasEntry binds a canonical field to its accepted spellings. Substrings
// are matched case-insensitively against the raw header. Declaration order
// is the tie-break order: the first entry whose alias matches wins.
type aliasEntry struct {
	Field   Field
	Aliases []string
}

// aliasTable is the process-wide, read-only alias configuration.
// "ctr" is listed as an exclusion on clicks so that a precomputed CTR column
// is not mistaken for the click count.
var aliasTable = []aliasEntry{
	{FieldDate, []string{"date", "day", "period"}},
	{FieldCampaign, []string{"campaign", "ad_group", "adgroup", "ad set", "adset"}},
	{FieldImpressions, []string{"impression", "impr", "views"}},
	{FieldClicks, []string{"click"}},
	{FieldSpend, []string{"spend", "cost", "budget"}},
	{FieldConversions, []string{"conversion", "conv", "purchases", "orders"}},
	{FieldRevenue, []string{"revenue", "sales", "income"}},
}

// Mapping associates each resolved canonical field with the source column
// it was found under.
type Mapping map[Field]string

// Has reports whether the canonical field was resolved.
func (m Mapping) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// SchemaError reports every required field that could not be resolved from
// the input headers. It is fatal to the run: the caller must surface it
// before any KPI computation happens.
type SchemaError struct {
	Missing []Field
	Headers []string
}

func (e *SchemaError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("unresolvable required columns: %s (headers seen: %s)",
		strings.Join(names, ", "), strings.Join(e.Headers, ", "))
}

// Mapper resolves headers against the built-in alias table plus any
// caller-supplied extensions. The zero value uses the built-in table only.
type Mapper struct {
	table []aliasEntry
}

// NewMapper builds a Mapper whose alias table is the built-in table with
// extra aliases appended per field. Extra aliases rank after the built-in
// ones for the same field.
func NewMapper(extra map[Field][]string) *Mapper {
	table := make([]aliasEntry, len(aliasTable))
	for i, e := range aliasTable {
		merged := append([]string(nil), e.Aliases...)
		merged = append(merged, extra[e.Field]...)
		table[i] = aliasEntry{Field: e.Field, Aliases: merged}
	}
	return &Mapper{table: table}
}

// Resolve maps the input headers onto the canonical field set using the
// default alias table.
func Resolve(headers []string) (Mapping, error) {
	return (&Mapper{}).Resolve(headers)
}

// Resolve maps the input headers onto the canonical field set.
//
// Policy: case-insensitive exact match against an alias first, then
// case-insensitive substring match, in alias-table declaration order. The
// first header claiming a field wins; later headers matching the same field
// are ignored. A nil error guarantees all RequiredFields are present.
func (mp *Mapper) Resolve(headers []string) (Mapping, error) {
	table := mp.table
	if table == nil {
		table = aliasTable
	}
	m := make(Mapping, len(table))

	// Exact alias matches take priority over substring hits, so run the
	// two passes separately over the whole header set.
	for _, e := range table {
		if _, taken := m[e.Field]; taken {
			continue
		}
		if src, ok := matchHeader(headers, e.Aliases, true); ok {
			m[e.Field] = src
		}
	}
	for _, e := range table {
		if _, taken := m[e.Field]; taken {
			continue
		}
		if src, ok := matchHeader(headers, e.Aliases, false); ok {
			m[e.Field] = src
		}
	}

	var missing []Field
	for _, f := range RequiredFields {
		if !m.Has(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Headers: headers}
	}
	return m, nil
}

func matchHeader(headers []string, aliases []string, exact bool) (string, bool) {
	for _, alias := range aliases {
		for _, h := range headers {
			norm := normalizeHeader(h)
			if exact {
				if norm == alias {
					return h, true
				}
				continue
			}
			if strings.Contains(norm, alias) && !isExcluded(norm) {
				return h, true
			}
		}
	}
	return "", false
}

// isExcluded rejects headers that name a derived rate rather than a raw
// count ("ctr", "cpc", "cpm" all contain letters that collide with aliases
// once normalized, e.g. "ctr" would otherwise never match but "cpc_click"
// style exports do appear in the wild).
func isExcluded(norm string) bool {
	for _, ex := range []string{"ctr", "cpc", "cpm", "rate", "roas"} {
		if strings.Contains(norm, ex) {
			return true
		}
	}
	return false
}

// normalizeHeader lowercases and collapses separators so "Click_Count",
// "click-count" and "Click Count" all compare equal.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer("_", " ", "-", " ", "(", " ", ")", " ", "$", " ", "%", " ").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}
