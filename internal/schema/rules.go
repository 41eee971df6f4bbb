package schema

import "strings"

// Predicate decides whether a normalized header (lowercased, trimmed) at
// position idx satisfies a rule.
type Predicate func(idx int, header string) bool

// Rule binds a predicate to the role it resolves.
type Rule struct {
	Role  Role
	Match Predicate
}

// Pass is one ordered scan over the headers. A pass only ever assigns roles
// that are still unresolved when it starts, and within a pass the first
// matching header wins each role.
type Pass struct {
	Name  string
	Rules []Rule
}

// Pass names reported in a Resolution.
const (
	PassPrimary           = "primary"
	PassSampleSizeLoose   = "sample-size-fallback-a"
	PassSampleSizeAny     = "sample-size-fallback-b"
	PassPositionalDefault = "default"
)

// Term lists used by the default passes.
var (
	EffectTerms     = []string{"d", "es", "effect", "coef", "beta", "estimate", "estimates"}
	StdErrTerms     = []string{"se", "sed", "stderr", "standard_error", "std_error", "standard errors"}
	SampleSizeTerms = []string{"sample_size", "sample sizes", "observations", "nobs"}
	StudyTerms      = []string{"study", "study_id", "group", "cluster", "study id", "studyid"}

	// ArmSizeTerms name per-arm counts that should not be mistaken for the
	// total sample size in the first fallback.
	ArmSizeTerms = []string{"n_treat", "n_control", "n1", "n2"}
)

// DefaultPasses is the standard resolution order.
var DefaultPasses = []Pass{
	{
		Name: PassPrimary,
		Rules: []Rule{
			{Role: RoleEffect, Match: AnyOf(AtIndex(0), ContainsAny(EffectTerms...))},
			{Role: RoleStdErr, Match: ContainsAny(StdErrTerms...)},
			{Role: RoleSampleSize, Match: AnyOf(Equals("n"), ContainsAny(SampleSizeTerms...))},
			{Role: RoleStudy, Match: ContainsAny(StudyTerms...)},
		},
	},
	{
		Name: PassSampleSizeLoose,
		Rules: []Rule{
			{Role: RoleSampleSize, Match: Excluding(ContainsAny("n"), ArmSizeTerms...)},
		},
	},
	{
		Name: PassSampleSizeAny,
		Rules: []Rule{
			{Role: RoleSampleSize, Match: ContainsAny("n")},
		},
	},
}

// AtIndex matches the header at position i.
func AtIndex(i int) Predicate {
	return func(idx int, _ string) bool { return idx == i }
}

// Equals matches a header equal to term.
func Equals(term string) Predicate {
	return func(_ int, header string) bool { return header == term }
}

// ContainsAny matches a header containing any of terms as a substring.
func ContainsAny(terms ...string) Predicate {
	return func(_ int, header string) bool {
		for _, term := range terms {
			if strings.Contains(header, term) {
				return true
			}
		}
		return false
	}
}

// AnyOf matches when any of preds matches.
func AnyOf(preds ...Predicate) Predicate {
	return func(idx int, header string) bool {
		for _, p := range preds {
			if p(idx, header) {
				return true
			}
		}
		return false
	}
}

// Excluding matches what p matches unless the header contains one of terms.
func Excluding(p Predicate, terms ...string) Predicate {
	excluded := ContainsAny(terms...)
	return func(idx int, header string) bool {
		return p(idx, header) && !excluded(idx, header)
	}
}

// NormalizeHeader is the form predicates see: trimmed and lowercased.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
