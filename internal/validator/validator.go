// Package validator performs lightweight checks on device configuration text
// and predicts the add/remove actions a push would perform.
package validator

import (
	"fmt"
	"sort"
	"strings"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"

	defaultComment = "!"
)

type DryRun struct {
	Actions []string `json:"actions"`
}

// Result has Status failed exactly when Errors is non-empty.
type Result struct {
	Status string   `json:"status"`
	Errors []string `json:"errors"`
	DryRun DryRun   `json:"dry_run"`
}

type Validator interface {
	Validate(deviceType, configText string) Result
}

type osRules struct {
	keywords map[string]struct{}
	comment  string
}

func keywordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var iosRules = osRules{
	keywords: keywordSet("interface", "router", "ip", "hostname", "line", "enable",
		"access-list", "no", "vlan", "username", "password"),
	comment: "!",
}

var rulesByOS = map[string]osRules{
	"cisco_ios": iosRules,
	"juniper_junos": {
		keywords: keywordSet("set", "delete", "interfaces", "protocols", "system",
			"routing-options", "security", "firewall", "policy-options"),
		comment: "#",
	},
	"arista_eos": {
		keywords: keywordSet("interface", "hostname", "ip", "vlan", "username",
			"enable", "no", "router", "management", "service-policy"),
		comment: "!",
	},
	// NX-OS and IOS-XR share the IOS rule set.
	"cisco_nxos": iosRules,
	"cisco_xr":   iosRules,
}

// New picks the validator once. deep enables the structural checks for
// Cisco IOS; every other OS always gets keyword validation.
func New(deep bool) Validator {
	if deep {
		return StructuralValidator{}
	}
	return KeywordValidator{}
}

func SupportedDeviceTypes() []string {
	types := make([]string, 0, len(rulesByOS))
	for t := range rulesByOS {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func IsSupported(deviceType string) bool {
	_, ok := rulesByOS[deviceType]
	return ok
}

func unsupported(deviceType string) Result {
	return Result{
		Status: StatusFailed,
		Errors: []string{fmt.Sprintf("Unsupported device type: %s", deviceType)},
		DryRun: DryRun{Actions: []string{}},
	}
}

func finish(errs, actions []string) Result {
	if errs == nil {
		errs = []string{}
	}
	if actions == nil {
		actions = []string{}
	}
	status := StatusSuccess
	if len(errs) > 0 {
		status = StatusFailed
	}
	return Result{Status: status, Errors: errs, DryRun: DryRun{Actions: actions}}
}

// dryRunAction maps a stripped line to its predicted action.
func dryRunAction(line string) string {
	if strings.HasPrefix(line, "no ") {
		return "REMOVE " + line[3:]
	}
	return "ADD " + line
}
