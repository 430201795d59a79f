// Package jsonquery runs RFC 9535 JSONPath queries against YAML documents.
package jsonquery

import (
	"fmt"
	"strings"

	"github.com/theory/jsonpath"

	"github.com/jacoelho/yamlpath/internal/processor"
	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

// Select evaluates expr over the plain-value projection of doc. Results are
// detached copies; anchors and styles are not preserved. An empty result
// is an ErrNotFound when mustExist is set.
func Select(doc *yamlnode.Document, expr string, mustExist bool) ([]*yamlnode.Node, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: JSONPath expression is empty", ypath.ErrMalformedExpression)
	}

	path, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSONPath %s: %v", ypath.ErrMalformedExpression, expr, err)
	}

	var results []any
	if !doc.IsNull() {
		results = path.Select(yamlnode.Interface(doc.Root))
	}

	if len(results) == 0 && mustExist {
		return nil, fmt.Errorf("%w: JSONPath %s does not match any nodes", processor.ErrNotFound, expr)
	}

	out := make([]*yamlnode.Node, 0, len(results))
	for _, r := range results {
		out = append(out, yamlnode.FromInterface(r))
	}
	return out, nil
}
