package schema

// Resolution is a RoleMap plus the pass that produced each role.
type Resolution struct {
	Roles RoleMap `json:"roles"`
	// Via names the pass that resolved each role; absent roles are missing.
	Via map[Role]string `json:"via"`
}

// Resolver maps header rows to RoleMaps using ordered passes.
type Resolver struct {
	passes []Pass
}

// NewResolver creates a resolver over passes, or DefaultPasses when none
// are given.
func NewResolver(passes ...Pass) *Resolver {
	if len(passes) == 0 {
		passes = DefaultPasses
	}
	return &Resolver{passes: passes}
}

// Resolve maps headers to roles with the default passes.
func Resolve(headers []string) RoleMap {
	return NewResolver().Resolve(headers)
}

// Resolve returns the role map for headers.
func (r *Resolver) Resolve(headers []string) RoleMap {
	return r.Explain(headers).Roles
}

// Explain resolves headers and records which pass assigned each role.
//
// Every pass is a single left-to-right scan; roles are resolved
// independently, so one header can win more than one role. After the passes,
// unresolved required roles take positional defaults: effect the first
// column, standard error the second and sample size the last. The study role
// has no default.
func (r *Resolver) Explain(headers []string) Resolution {
	res := Resolution{
		Roles: RoleMap{Effect: NoColumn, StdErr: NoColumn, SampleSize: NoColumn, Study: NoColumn},
		Via:   make(map[Role]string, len(Roles)),
	}

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	for _, pass := range r.passes {
		pending := make([]Rule, 0, len(pass.Rules))
		for _, rule := range pass.Rules {
			if _, done := res.Via[rule.Role]; !done {
				pending = append(pending, rule)
			}
		}
		if len(pending) == 0 {
			continue
		}

		for i, h := range normalized {
			for _, rule := range pending {
				if _, done := res.Via[rule.Role]; done {
					continue
				}
				if rule.Match(i, h) {
					res.Roles.set(rule.Role, i)
					res.Via[rule.Role] = pass.Name
				}
			}
		}
	}

	defaults := map[Role]int{
		RoleEffect:     0,
		RoleStdErr:     1,
		RoleSampleSize: max(len(headers)-1, 0),
	}
	for _, role := range []Role{RoleEffect, RoleStdErr, RoleSampleSize} {
		if _, done := res.Via[role]; !done {
			res.Roles.set(role, defaults[role])
			res.Via[role] = PassPositionalDefault
		}
	}

	return res
}
