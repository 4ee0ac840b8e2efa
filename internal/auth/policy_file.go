package auth

import (
	"fmt"
	"os"
	"strings"

	"github.com/mlbahja/01-blog/internal/domain/user"

	"gopkg.in/yaml.v3"
)

type policyFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Pattern string   `yaml:"pattern"`
	Methods []string `yaml:"methods"`
	Require string   `yaml:"require"`
	Role    string   `yaml:"role"`
}

// LoadRules reads an ordered rule table from a YAML file:
//
//	rules:
//	  - pattern: /admin/*
//	    require: role
//	    role: ADMIN
//	  - pattern: /health
//	    require: public
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(msgReadPolicyFileFmt, err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) ([]Rule, error) {
	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf(msgParsePolicyFileFmt, err)
	}

	rules := make([]Rule, 0, len(file.Rules))
	for _, entry := range file.Rules {
		req, err := entry.requirement()
		if err != nil {
			return nil, err
		}
		rules = append(rules, Rule{
			Pattern:     entry.Pattern,
			Methods:     entry.Methods,
			Requirement: req,
		})
	}
	return rules, nil
}

func (e ruleEntry) requirement() (Requirement, error) {
	switch strings.ToLower(strings.TrimSpace(e.Require)) {
	case "public":
		return Public(), nil
	case "authenticated", "":
		return Authenticated(), nil
	case "role":
		if e.Role == "" {
			return Requirement{}, fmt.Errorf(msgUnknownRoleFmt, e.Pattern, e.Role)
		}
		return Role(user.Role(strings.ToUpper(e.Role))), nil
	default:
		return Requirement{}, fmt.Errorf(msgUnknownRequirementFmt, e.Pattern, e.Require)
	}
}
