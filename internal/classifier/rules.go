package classifier

import (
	"regexp"

	"github.com/mendhq/mend/internal/types"
)

// rule pairs a pattern name with its matcher. Rules are tried in slice order
// and the first match wins, so declaration order below is load-bearing.
type rule struct {
	name    string
	pattern *regexp.Regexp
}

// languageRules maps a source-language tag to its ordered rule table. Messages
// that match none of these fall through to generalRules.
var languageRules = map[string][]rule{
	"python": {
		{"syntax_error", regexp.MustCompile(`(?i)SyntaxError: (.*)`)},
		{"name_error", regexp.MustCompile(`(?i)NameError: (.*)`)},
		{"type_error", regexp.MustCompile(`(?i)TypeError: (.*)`)},
		{"value_error", regexp.MustCompile(`(?i)ValueError: (.*)`)},
		{"index_error", regexp.MustCompile(`(?i)IndexError: (.*)`)},
		{"key_error", regexp.MustCompile(`(?i)KeyError: (.*)`)},
		{"attribute_error", regexp.MustCompile(`(?i)AttributeError: (.*)`)},
		{"import_error", regexp.MustCompile(`(?i)ImportError: (.*)`)},
		{"io_error", regexp.MustCompile(`(?i)IOError: (.*)`)},
		{"os_error", regexp.MustCompile(`(?i)OSError: (.*)`)},
	},
	"javascript": {
		{"syntax_error", regexp.MustCompile(`(?i)SyntaxError: (.*)`)},
		{"type_error", regexp.MustCompile(`(?i)TypeError: (.*)`)},
		{"reference_error", regexp.MustCompile(`(?i)ReferenceError: (.*)`)},
		{"range_error", regexp.MustCompile(`(?i)RangeError: (.*)`)},
		{"uri_error", regexp.MustCompile(`(?i)URIError: (.*)`)},
		{"eval_error", regexp.MustCompile(`(?i)EvalError: (.*)`)},
	},
	"java": {
		{"null_pointer", regexp.MustCompile(`(?i)NullPointerException`)},
		{"array_index", regexp.MustCompile(`(?i)ArrayIndexOutOfBoundsException`)},
		{"class_cast", regexp.MustCompile(`(?i)ClassCastException`)},
		{"io_exception", regexp.MustCompile(`(?i)IOException`)},
		{"sql_exception", regexp.MustCompile(`(?i)SQLException`)},
	},
}

// generalRules is the language-agnostic fallback table, also first-match-wins.
var generalRules = []rule{
	{"timeout", regexp.MustCompile(`(?i)timeout|timed out|time out`)},
	{"connection", regexp.MustCompile(`(?i)connection refused|connection reset|connection failed`)},
	{"memory", regexp.MustCompile(`(?i)out of memory|memory leak`)},
	{"disk", regexp.MustCompile(`(?i)disk full|no space left`)},
	{"permission", regexp.MustCompile(`(?i)permission denied|access denied`)},
}

// severityBucket is one keyword bucket; buckets are checked in slice order
// against both the lowercased raw message and the matched type name, and the
// first bucket with a hit wins.
type severityBucket struct {
	severity types.Severity
	keywords []string
}

var severityBuckets = []severityBucket{
	{types.SeverityCritical, []string{
		"out of memory", "disk full", "connection refused",
		"nullpointerexception", "timeout",
	}},
	{types.SeverityHigh, []string{
		"typeerror", "valueerror", "sqlexception",
		"ioexception", "classcastexception",
	}},
	{types.SeverityMedium, []string{
		"attributeerror", "importerror", "referenceerror",
		"rangeerror", "urierror",
	}},
	{types.SeverityLow, []string{
		"warning", "deprecated", "info",
	}},
}

// categoryRule maps keywords to a category; the table is scanned in order and
// the first keyword hit wins.
type categoryRule struct {
	category types.Category
	keywords []string
}

var categoryRules = []categoryRule{
	{types.CategorySyntax, []string{"syntaxerror", "parseerror"}},
	{types.CategoryRuntime, []string{"typeerror", "valueerror", "nullpointer"}},
	{types.CategorySecurity, []string{"access denied", "permission denied", "security"}},
	{types.CategoryPerformance, []string{"timeout", "slow", "performance"}},
	{types.CategoryResource, []string{"out of memory", "disk full", "resource"}},
	{types.CategoryNetwork, []string{"connection", "network", "http", "https"}},
	{types.CategoryDatabase, []string{"database", "sql", "query", "transaction"}},
	{types.CategoryIntegration, []string{"api", "integration", "webhook", "service"}},
	{types.CategoryConfiguration, []string{"config", "setting", "property", "environment"}},
}

// typeActionRule contributes a fixed action pair when the matched type name
// contains the keyword. Checked top to bottom, first hit only.
type typeActionRule struct {
	keyword string
	actions []string
}

var typeActionRules = []typeActionRule{
	{"syntax", []string{"check_code_syntax", "validate_variables"}},
	{"type", []string{"validate_data_types", "check_variable_assignment"}},
	{"null", []string{"add_null_checks", "validate_object_existence"}},
	{"memory", []string{"check_memory_usage", "review_resource_allocation"}},
	{"timeout", []string{"increase_timeout", "optimize_performance"}},
	{"permission", []string{"check_file_permissions", "validate_user_access"}},
}

// severity-driven actions, applied before the type-driven rules
var (
	criticalActions = []string{"immediate_attention", "notify_team"}
	highActions     = []string{"review_urgently"}
)

// fallbackAction is used when no severity- or type-driven rule contributes
const fallbackAction = "review_manually"
