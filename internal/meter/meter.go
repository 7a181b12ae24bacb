// Package meter models the beat hierarchy of a time signature and rewrites
// music so that its notated durations follow that hierarchy.
package meter

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/divVerent/rmakers/internal/duration"
)

// Node is one level of the beat hierarchy.
type Node struct {
	Duration duration.Duration
	Children []*Node
}

func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

func (n *Node) String() string {
	if n.IsLeaf() {
		return n.Duration.String()
	}
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("(%v (%s))", n.Duration, strings.Join(parts, " "))
}

// Meter is a time signature with its beat hierarchy.
type Meter struct {
	Pair duration.Division
	Root *Node
}

// New builds the default hierarchy for a time signature: the numerator is factored
// into primes; two leading factors of 2 become one level of 4, and factors above 4 are
// grouped as 3+2+2... (or ...2+2+3 if increaseMonotonic).
func New(pair duration.Division, increaseMonotonic bool) Meter {
	root := &Node{Duration: pair.Duration()}
	factors := primeFactors(pair.Num)
	if len(factors) > 1 && factors[0] == 2 && factors[1] == 2 {
		factors = append([]int64{4}, factors[2:]...)
	}
	build(root, factors, pair.Den, increaseMonotonic)
	return Meter{Pair: pair, Root: root}
}

func build(node *Node, factors []int64, den int64, increaseMonotonic bool) {
	unit := duration.New(1, den)
	if len(factors) == 0 {
		n := node.Duration.Div(unit).Num()
		for i := int64(0); i < n; i++ {
			node.Children = append(node.Children, &Node{Duration: unit})
		}
		return
	}
	factor, rest := factors[0], factors[1:]
	child := node.Duration.Div(duration.Int(factor))
	fill := func(parent *Node, count int64) {
		for i := int64(0); i < count; i++ {
			if len(rest) > 0 {
				c := &Node{Duration: child}
				build(c, rest, den, increaseMonotonic)
				parent.Children = append(parent.Children, c)
			} else {
				parent.Children = append(parent.Children, &Node{Duration: unit})
			}
		}
	}
	if factor <= 4 {
		fill(node, factor)
		return
	}
	parts := []int64{3}
	for total := int64(3); total < factor; total += 2 {
		if increaseMonotonic {
			parts = append([]int64{2}, parts...)
		} else {
			parts = append(parts, 2)
		}
	}
	for _, part := range parts {
		g := &Node{Duration: child.Scale(part)}
		if len(rest) == 0 {
			g.Duration = unit.Scale(part)
		}
		fill(g, part)
		node.Children = append(node.Children, g)
	}
}

func primeFactors(n int64) []int64 {
	var out []int64
	for p := int64(2); p*p <= n; p++ {
		for n%p == 0 {
			out = append(out, p)
			n /= p
		}
	}
	if n > 1 {
		out = append(out, n)
	}
	return out
}

func (m Meter) Duration() duration.Duration {
	return m.Pair.Duration()
}

// String returns the rhythm-tree form, e.g. "(3/4 (1/4 1/4 1/4))".
func (m Meter) String() string {
	if m.Root.IsLeaf() {
		return fmt.Sprintf("(%v (%v))", m.Pair, m.Root.Duration)
	}
	s := m.Root.String()
	// Keep the unreduced pair at the root.
	return fmt.Sprintf("(%v%s", m.Pair, s[len(m.Root.Duration.String())+1:])
}

// DepthwiseOffsets returns for each depth the offsets at which nodes of that depth
// start, plus the end of the meter. Leaves above a depth still count at that depth.
func (m Meter) DepthwiseOffsets() [][]duration.Duration {
	var out [][]duration.Duration
	type item struct {
		node  *Node
		start duration.Duration
	}
	level := []item{{m.Root, duration.Int(0)}}
	var carried []duration.Duration
	for len(level) > 0 {
		offsets := slices.Clone(carried)
		var next []item
		for _, it := range level {
			offsets = append(offsets, it.start)
			if it.node.IsLeaf() {
				carried = append(carried, it.start)
				continue
			}
			off := it.start
			for _, c := range it.node.Children {
				next = append(next, item{c, off})
				off = off.Add(c.Duration)
			}
		}
		offsets = append(offsets, m.Duration())
		out = append(out, sortOffsets(offsets))
		level = next
	}
	return out
}

func sortOffsets(offsets []duration.Duration) []duration.Duration {
	slices.SortFunc(offsets, duration.Duration.Cmp)
	return slices.CompactFunc(offsets, duration.Duration.Equal)
}

// Parse reads the rhythm-tree form written by String. Every container must
// equal the sum of its children.
func Parse(s string) (Meter, error) {
	p := &parser{tokens: tokenize(s)}
	root, pairStr, err := p.node()
	if err != nil {
		return Meter{}, fmt.Errorf("invalid meter %q: %v", s, err)
	}
	if p.pos != len(p.tokens) {
		return Meter{}, fmt.Errorf("invalid meter %q: trailing %q", s, p.tokens[p.pos])
	}
	if root.IsLeaf() {
		return Meter{}, fmt.Errorf("invalid meter %q: root must be a container", s)
	}
	pair, err := duration.ParseDivision(pairStr)
	if err != nil {
		return Meter{}, fmt.Errorf("invalid meter %q: %v", s, err)
	}
	return Meter{Pair: pair, Root: root}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Meter {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '(' || r == ')':
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) next() (string, error) {
	if p.pos >= len(p.tokens) {
		return "", fmt.Errorf("unexpected end")
	}
	t := p.tokens[p.pos]
	p.pos++
	return t, nil
}

// node parses "n/d" or "(n/d (children...))" and also returns the unreduced duration text.
func (p *parser) node() (*Node, string, error) {
	t, err := p.next()
	if err != nil {
		return nil, "", err
	}
	if t != "(" {
		d, err := duration.Parse(t)
		if err != nil {
			return nil, "", err
		}
		if d.Sign() <= 0 {
			return nil, "", fmt.Errorf("non-positive duration %v", d)
		}
		return &Node{Duration: d}, t, nil
	}
	head, err := p.next()
	if err != nil {
		return nil, "", err
	}
	d, err := duration.Parse(head)
	if err != nil {
		return nil, "", err
	}
	n := &Node{Duration: d}
	if t, err = p.next(); err != nil || t != "(" {
		return nil, "", fmt.Errorf("expected ( after %v", head)
	}
	var sum duration.Duration
	for p.pos < len(p.tokens) && p.tokens[p.pos] != ")" {
		c, _, err := p.node()
		if err != nil {
			return nil, "", err
		}
		n.Children = append(n.Children, c)
		sum = sum.Add(c.Duration)
	}
	for i := 0; i < 2; i++ {
		if t, err = p.next(); err != nil || t != ")" {
			return nil, "", fmt.Errorf("expected ) to close %v", head)
		}
	}
	if len(n.Children) == 0 {
		return nil, "", fmt.Errorf("empty container %v", head)
	}
	if !sum.Equal(d) {
		return nil, "", fmt.Errorf("children of %v add up to %v", head, sum)
	}
	return n, head, nil
}
