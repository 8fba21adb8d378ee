package chart

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/simonvc/finreports/internal/ledger"
)

// Chart is an immutable chart of accounts. Accounts are held in an arena
// keyed by id; the tree is expressed through parent ids and a children
// index derived when the chart is built.
type Chart struct {
	nodes       map[string]ledger.Account
	children    map[string][]string
	roots       map[ledger.Classification][]string
	fingerprint string
}

// New validates accounts and builds a chart from them. Every parent must be
// registered, the parent links must not form a cycle, and a child must share
// its parent's classification.
func New(accounts []ledger.Account) (*Chart, error) {
	c := &Chart{
		nodes:    make(map[string]ledger.Account, len(accounts)),
		children: make(map[string][]string),
		roots:    make(map[ledger.Classification][]string),
	}

	for i := range accounts {
		a := accounts[i]
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.nodes[a.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ledger.ErrDuplicateAccount, a.ID)
		}
		c.nodes[a.ID] = a
	}

	for id, a := range c.nodes {
		if a.ParentID == "" {
			c.roots[a.Classification] = append(c.roots[a.Classification], id)
			continue
		}
		parent, ok := c.nodes[a.ParentID]
		if !ok {
			return nil, fmt.Errorf("parent of %s: %w", id, ledger.UnknownAccount(a.ParentID))
		}
		if parent.Classification != a.Classification {
			return nil, fmt.Errorf("%w: %s is %s, parent %s is %s",
				ledger.ErrParentClassificationMismatch, id, a.Classification, parent.ID, parent.Classification)
		}
		c.children[a.ParentID] = append(c.children[a.ParentID], id)
	}

	if err := c.checkCycles(); err != nil {
		return nil, err
	}

	for parent := range c.children {
		c.sortIDs(c.children[parent])
	}
	for class := range c.roots {
		c.sortIDs(c.roots[class])
	}
	c.fingerprint = c.digest()
	return c, nil
}

// digest hashes every account field a statement can show, in id order.
// Two charts with the same accounts get the same digest in any process.
func (c *Chart) digest() string {
	ids := make([]string, 0, len(c.nodes))
	for id := range c.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		a := c.nodes[id]
		fmt.Fprintf(h, "%q %q %d %q %q\n", a.ID, a.Name, a.Code, a.Classification, a.ParentID)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint identifies the chart's content. Unlike a registry generation
// it is stable across restarts and replicas.
func (c *Chart) Fingerprint() string {
	return c.fingerprint
}

// checkCycles walks every parent chain. A chain that revisits an account
// before reaching a root is a cycle.
func (c *Chart) checkCycles() error {
	acyclic := make(map[string]bool, len(c.nodes))
	for id := range c.nodes {
		seen := map[string]bool{}
		cur := id
		for cur != "" && !acyclic[cur] {
			if seen[cur] {
				return fmt.Errorf("%w: through %s", ledger.ErrChartCycle, cur)
			}
			seen[cur] = true
			cur = c.nodes[cur].ParentID
		}
		for v := range seen {
			acyclic[v] = true
		}
	}
	return nil
}

// sortIDs orders siblings by code, accounts without a code last, then by id.
func (c *Chart) sortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := c.nodes[ids[i]], c.nodes[ids[j]]
		if a.Code != b.Code {
			if a.Code == 0 {
				return false
			}
			if b.Code == 0 {
				return true
			}
			return a.Code < b.Code
		}
		return a.ID < b.ID
	})
}

// Classify returns the classification of id and its ancestor ids, root first.
func (c *Chart) Classify(id string) (ledger.Classification, []string, error) {
	a, ok := c.nodes[id]
	if !ok {
		return "", nil, ledger.UnknownAccount(id)
	}
	var path []string
	for p := a.ParentID; p != ""; p = c.nodes[p].ParentID {
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return a.Classification, path, nil
}

func (c *Chart) Lookup(id string) (ledger.Account, bool) {
	a, ok := c.nodes[id]
	return a, ok
}

func (c *Chart) Len() int {
	return len(c.nodes)
}

// Accounts enumerates every account in pre-order, classification by
// classification.
func (c *Chart) Accounts() []ledger.Account {
	out := make([]ledger.Account, 0, len(c.nodes))
	var visit func(id string)
	visit = func(id string) {
		out = append(out, c.nodes[id])
		for _, child := range c.children[id] {
			visit(child)
		}
	}
	for _, class := range ledger.AllClassifications {
		for _, id := range c.roots[class] {
			visit(id)
		}
	}
	return out
}

func (c *Chart) Children(id string) []ledger.Account {
	return c.collect(c.children[id])
}

// Roots returns the top-level accounts of one classification.
func (c *Chart) Roots(class ledger.Classification) []ledger.Account {
	return c.collect(c.roots[class])
}

// Count returns the number of accounts in the given classifications.
func (c *Chart) Count(classes ...ledger.Classification) int {
	n := 0
	for _, a := range c.nodes {
		for _, class := range classes {
			if a.Classification == class {
				n++
				break
			}
		}
	}
	return n
}

func (c *Chart) collect(ids []string) []ledger.Account {
	if len(ids) == 0 {
		return nil
	}
	out := make([]ledger.Account, len(ids))
	for i, id := range ids {
		out[i] = c.nodes[id]
	}
	return out
}
