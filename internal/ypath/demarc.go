package ypath

import "strings"

// demarcations tracks the open quote, bracket and parenthesis marks while
// scanning, innermost last.
type demarcations struct {
	marks []rune
}

func (d *demarcations) push(r rune) {
	d.marks = append(d.marks, r)
}

func (d *demarcations) pop() {
	if len(d.marks) > 0 {
		d.marks = d.marks[:len(d.marks)-1]
	}
}

// top is the innermost open mark, or 0 when none is open.
func (d *demarcations) top() rune {
	if len(d.marks) == 0 {
		return 0
	}
	return d.marks[len(d.marks)-1]
}

func (d *demarcations) depth() int {
	return len(d.marks)
}

// String lists the open marks outermost first.
func (d *demarcations) String() string {
	open := make([]string, len(d.marks))
	for i, r := range d.marks {
		open[i] = string(r)
	}
	return strings.Join(open, ", ")
}
