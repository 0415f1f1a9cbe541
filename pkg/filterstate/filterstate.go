// Package filterstate keeps task-list filter intent and its query-string
// form in sync, bidirectionally, without touching any UI or transport
// concern. Defaults are omitted from the encoded form so the same state
// always produces the same canonical string.
package filterstate

import (
	"net/url"
)

// Query parameter names
const (
	ParamSearch   = "q"
	ParamSortBy   = "sort_by"
	ParamOrder    = "order"
	ParamPriority = "priority"
	ParamCategory = "category"
)

// Defaults applied when a parameter is absent
const (
	DefaultSortBy = "created_at"
	DefaultOrder  = "desc"
)

// FilterState is the ephemeral, URL-derived set of search/sort/filter
// parameters governing which tasks are displayed. It is never persisted.
type FilterState struct {
	Search   string
	SortBy   string
	Order    string
	Priority string
	Category string
}

// Default returns the state with no active filters.
func Default() FilterState {
	return FilterState{
		SortBy: DefaultSortBy,
		Order:  DefaultOrder,
	}
}

// Parse derives a FilterState from query parameters. Missing parameters
// take their defaults. Enum-typed parameters are passed through without
// validation; consumers are expected to whitelist what they act on.
func Parse(values url.Values) FilterState {
	fs := Default()

	if v := values.Get(ParamSearch); v != "" {
		fs.Search = v
	}
	if v := values.Get(ParamSortBy); v != "" {
		fs.SortBy = v
	}
	if v := values.Get(ParamOrder); v != "" {
		fs.Order = v
	}
	if v := values.Get(ParamPriority); v != "" {
		fs.Priority = v
	}
	if v := values.Get(ParamCategory); v != "" {
		fs.Category = v
	}

	return fs
}

// ParseQuery is Parse over a raw query string. A malformed query yields
// the default state.
func ParseQuery(rawQuery string) FilterState {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Default()
	}
	return Parse(values)
}

// Values returns the minimal parameter set for the state: only values
// differing from their default are present.
func (fs FilterState) Values() url.Values {
	values := url.Values{}

	if fs.Search != "" {
		values.Set(ParamSearch, fs.Search)
	}
	if fs.SortBy != "" && fs.SortBy != DefaultSortBy {
		values.Set(ParamSortBy, fs.SortBy)
	}
	if fs.Order != "" && fs.Order != DefaultOrder {
		values.Set(ParamOrder, fs.Order)
	}
	if fs.Priority != "" {
		values.Set(ParamPriority, fs.Priority)
	}
	if fs.Category != "" {
		values.Set(ParamCategory, fs.Category)
	}

	return values
}

// Encode returns the canonical query string for the state. Values
// emits parameters in sorted key order, so equal states always encode
// equally regardless of how they were produced.
func (fs FilterState) Encode() string {
	return fs.Values().Encode()
}

// Merge overlays the non-nil fields of a partial change onto the state
// and returns the resulting state. The receiver is not modified.
func (fs FilterState) Merge(partial Partial) FilterState {
	if partial.Search != nil {
		fs.Search = *partial.Search
	}
	if partial.SortBy != nil {
		fs.SortBy = *partial.SortBy
	}
	if partial.Order != nil {
		fs.Order = *partial.Order
	}
	if partial.Priority != nil {
		fs.Priority = *partial.Priority
	}
	if partial.Category != nil {
		fs.Category = *partial.Category
	}
	return fs
}

// Partial is a set of filter changes; nil fields keep the current value.
type Partial struct {
	Search   *string
	SortBy   *string
	Order    *string
	Priority *string
	Category *string
}

// Reset returns the default state, clearing every filter.
func (fs FilterState) Reset() FilterState {
	return Default()
}

// HasActiveFilters reports whether any field differs from its default.
// A zero-valued field counts as its default.
func (fs FilterState) HasActiveFilters() bool {
	return fs.Encode() != ""
}
