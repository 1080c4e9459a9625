package validator

import (
	"fmt"
	"strings"
)

// KeywordValidator checks the leading keyword of every non-comment line
// against the allow-list of the device OS.
type KeywordValidator struct{}

func (KeywordValidator) Validate(deviceType, configText string) Result {
	rules, ok := rulesByOS[deviceType]
	if !ok {
		return unsupported(deviceType)
	}
	errs, actions := keywordCheck(rules, configText)
	return finish(errs, actions)
}

func keywordCheck(rules osRules, configText string) (errs, actions []string) {
	comment := rules.comment
	if comment == "" {
		comment = defaultComment
	}
	for _, raw := range strings.Split(configText, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, comment) {
			continue
		}
		keyword := strings.Fields(line)[0]
		if _, known := rules.keywords[keyword]; !known {
			errs = append(errs, fmt.Sprintf("Unknown keyword '%s' in line: %s", keyword, line))
		}
		actions = append(actions, dryRunAction(line))
	}
	return errs, actions
}
