package network

import "sort"

const (
	AuditStatusPass    = "pass"
	AuditStatusFail    = "fail"
	AuditStatusWarning = "warning"
	AuditStatusError   = "error"

	DefaultAuditType = "ping"
)

// auditCategories maps every known audit type to its category.
var auditCategories = map[string]string{
	"ping":        "connectivity",
	"interfaces":  "connectivity",
	"bgp":         "routing",
	"ospf":        "routing",
	"config":      "compliance",
	"security":    "compliance",
	"performance": "health",
}

func AuditCategory(auditType string) (string, bool) {
	c, ok := auditCategories[auditType]
	return c, ok
}

func AuditTypes() []string {
	types := make([]string, 0, len(auditCategories))
	for t := range auditCategories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
