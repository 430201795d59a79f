// Package ypath parses and renders YAML Path expressions.
//
// A YAML Path addresses nodes of a YAML document. Key segments are
// separated by '.' or '/'; brackets select list indexes, slices, anchors,
// searches and keyword searches; '*' and '**' match one level or any depth;
// parenthesised collectors gather sub-query results and combine them with
// '+' and '-'. Parse converts text into an immutable Path whose segments are
// typed; Stringify renders segments back into canonical text.
package ypath
