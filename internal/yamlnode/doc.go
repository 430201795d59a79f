// Package yamlnode holds the in-memory YAML document graph consumed by the
// path engine.
//
// Documents are loaded from goccy/go-yaml syntax trees. Anchored nodes are
// shared by pointer with every alias that refers to them, so replacing a node
// by identity reaches the anchor owner and all of its aliases. Mappings keep
// their YAML merge-key sources separately from locally declared keys.
package yamlnode
