// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/walteh/colsync/pkg/classify"
	"github.com/walteh/colsync/pkg/text"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

type HCLParser struct{}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// hclBody is the HCL layout of Config, with newman and sync as blocks
type hclBody struct {
	Source        string                 `hcl:"source,optional"`
	Output        string                 `hcl:"output,optional"`
	GroupName     string                 `hcl:"group_name,optional"`
	ContractTests []classify.Target      `hcl:"contract_test,block"`
	Replacements  []text.ReplacementRule `hcl:"replacement,block"`
	Newman        *NewmanConfig          `hcl:"newman,block"`
	Sync          *SyncConfig            `hcl:"sync,block"`
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// env.NAME is available inside expressions
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envObject(),
		},
	}

	var body hclBody
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &body)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		Source:        body.Source,
		Output:        body.Output,
		GroupName:     body.GroupName,
		ContractTests: body.ContractTests,
		Replacements:  body.Replacements,
	}
	if body.Newman != nil {
		cfg.Newman = *body.Newman
	}
	if body.Sync != nil {
		cfg.Sync = *body.Sync
	}

	return cfg, nil
}

func envObject() cty.Value {
	vals := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vals[k] = cty.StringVal(v)
	}
	if len(vals) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vals)
}
