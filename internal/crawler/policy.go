package crawler

// PolicyGate decides whether a URL may be crawled: robots rules and the
// pattern filter must both agree. Missing robots rules allow everything.
type PolicyGate struct {
	filter        *PatternFilter
	robots        *RobotsRules
	respectRobots bool
	agent         string
}

func NewPolicyGate(filter *PatternFilter, robots *RobotsRules, respectRobots bool, agent string) *PolicyGate {
	return &PolicyGate{
		filter:        filter,
		robots:        robots,
		respectRobots: respectRobots,
		agent:         agent,
	}
}

// IsEligible reports whether url may be visited
func (g *PolicyGate) IsEligible(url string) bool {
	return g.robotsAllowed(url) && g.patternsAllow(url)
}

func (g *PolicyGate) robotsAllowed(url string) bool {
	if !g.respectRobots || g.robots == nil {
		return true
	}
	return g.robots.Allowed(url, g.agent)
}

func (g *PolicyGate) patternsAllow(url string) bool {
	if g.filter == nil {
		return true
	}
	return g.filter.Matches(url)
}
