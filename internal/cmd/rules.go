package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/guregu/null.v3"
	"gopkg.in/yaml.v3"

	"github.com/domtest/jqassert"
	"github.com/domtest/jqassert/scriptcall"
)

// ruleFile is the YAML schema of a jqcheck rules file.
//
//	checks:
//	  - name: cart updated
//	    method: replaceWith
//	    identifier: "#cart"
//	    select:
//	      - selector: "span.total"
//	        count: 1
//	        text: "$12.00"
type ruleFile struct {
	Checks []rule `yaml:"checks"`
}

type rule struct {
	Name       string       `yaml:"name"`
	Method     string       `yaml:"method"`
	Option     string       `yaml:"option"`
	Identifier string       `yaml:"identifier"`
	Select     []selectRule `yaml:"select"`
}

type selectRule struct {
	Selector string            `yaml:"selector"`
	Min      *int              `yaml:"min"`
	Count    *int              `yaml:"count"`
	Text     string            `yaml:"text"`
	Contains string            `yaml:"contains"`
	Attr     map[string]string `yaml:"attr"`
}

func loadRules(fs afero.Fs, path string) (ruleFile, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return ruleFile{}, fmt.Errorf("cannot read rules file: %w", err)
	}
	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return ruleFile{}, fmt.Errorf("cannot parse rules file: %w", err)
	}
	if len(rf.Checks) == 0 {
		return ruleFile{}, fmt.Errorf("rules file %s declares no checks", path)
	}
	for i, r := range rf.Checks {
		for _, sr := range r.Select {
			if sr.Selector == "" {
				return ruleFile{}, fmt.Errorf("check %d (%s): select entry without selector", i, r.Name)
			}
		}
	}
	return rf, nil
}

func (r rule) title() string {
	if r.Name != "" {
		return r.Name
	}
	shape := r.shape()
	if args := shape.Args(); len(args) > 0 {
		return fmt.Sprintf("%v", args)
	}
	return "any call"
}

func (r rule) shape() scriptcall.Shape {
	return scriptcall.Shape{
		Method:     null.NewString(r.Method, r.Method != ""),
		Option:     null.NewString(r.Option, r.Option != ""),
		Identifier: null.NewString(r.Identifier, r.Identifier != ""),
	}
}

func (sr selectRule) checks() []jqassert.Check {
	var checks []jqassert.Check
	if sr.Count != nil {
		checks = append(checks, jqassert.Count(*sr.Count))
	}
	if sr.Min != nil {
		checks = append(checks, jqassert.MinCount(*sr.Min))
	}
	if sr.Text != "" {
		checks = append(checks, jqassert.TextEquals(sr.Text))
	}
	if sr.Contains != "" {
		checks = append(checks, jqassert.TextContains(sr.Contains))
	}
	for name, want := range sr.Attr {
		checks = append(checks, jqassert.AttrEquals(name, want))
	}
	return checks
}
