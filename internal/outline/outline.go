// Package outline models an assignment's question outline: a tree rooted at a
// synthetic, never-transmitted root, plus a flat id/title index over every
// node. The remote service only accepts whole-tree replacement, so mutations
// here are local and callers push Patch() afterwards.
package outline

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/roster"
	"github.com/google/uuid"
)

// ErrParentNotFound indicates an insert targeted a parent id absent from the tree.
var ErrParentNotFound = errors.New("parent question not found")

// Outline is an assignment's question tree and its flat index.
type Outline struct {
	root  *Question
	index *roster.Roster[*Question]
}

// New returns an outline with no questions.
func New() *Outline {
	return &Outline{
		root:  &Question{Title: rootTitle},
		index: roster.New[*Question](),
	}
}

// Build constructs an outline from the remote outline documents (the
// top-level questions, each with nested children).
func Build(docs []NodeDoc) (*Outline, error) {
	o := New()
	for _, d := range docs {
		q, err := o.build(d, nil)
		if err != nil {
			return nil, err
		}
		o.root.Children = append(o.root.Children, q)
	}
	return o, nil
}

func (o *Outline) build(d NodeDoc, structuralParent *string) (*Question, error) {
	qt := domain.QuestionType(d.Type)
	if qt != "" && !domain.ValidQuestionTypes[qt] {
		return nil, fmt.Errorf("question %q: unknown type %q", d.Title, d.Type)
	}
	parentID := d.ParentID
	if parentID == nil {
		parentID = structuralParent
	}
	q := &Question{
		ID:       d.ID,
		Title:    d.Title,
		Weight:   d.Weight,
		Type:     qt,
		ParentID: parentID,
		Content:  d.Content,
		Crop:     d.Crop,
	}
	if q.ID == nil {
		q.handle = newHandle()
	}
	if err := o.index.Add(q); err != nil {
		return nil, fmt.Errorf("indexing question %q: %w", q.Title, err)
	}
	for _, cd := range d.Children {
		child, err := o.build(cd, q.ID)
		if err != nil {
			return nil, err
		}
		q.Children = append(q.Children, child)
	}
	return q, nil
}

func newHandle() string {
	return "local-" + uuid.NewString()
}

// TopLevel returns the root's children.
func (o *Outline) TopLevel() []*Question {
	return o.root.Children
}

// FindByID walks the tree depth-first in pre-order. A nil id resolves to the
// synthetic root, which is where top-level questions are attached.
func (o *Outline) FindByID(id *string) *Question {
	if id == nil {
		return o.root
	}
	return o.root.findByID(*id)
}

// Get resolves sel against the flat index. Title lookups are ambiguous when
// more than one question shares the title.
func (o *Outline) Get(sel roster.Selector[*Question]) (*Question, error) {
	q, err := o.index.Get(sel)
	if err != nil {
		return nil, fmt.Errorf("question %s: %w", sel, err)
	}
	return q, nil
}

// Lookup is the non-raising form of Get.
func (o *Outline) Lookup(sel roster.Selector[*Question]) (*Question, bool) {
	return o.index.Lookup(sel)
}

// All returns every question in index order: pre-order as built, followed
// by local insertions.
func (o *Outline) All() []*Question {
	return o.index.All()
}

// Len returns the number of questions, excluding the synthetic root.
func (o *Outline) Len() int {
	return o.index.Len()
}

// NewQuestion describes a question to append under ParentID (nil for top level).
type NewQuestion struct {
	Title    string
	Weight   float64
	Crop     []CropRect
	Content  json.RawMessage
	ParentID *string
}

// Insert appends a local-only question under its parent and indexes it by a
// temporary handle. The question keeps a nil ID until the outline is rebuilt
// from the remote service.
func (o *Outline) Insert(nq NewQuestion) (*Question, error) {
	parent := o.FindByID(nq.ParentID)
	if parent == nil {
		return nil, fmt.Errorf("%w: %s", ErrParentNotFound, *nq.ParentID)
	}
	crop := nq.Crop
	if len(crop) == 0 {
		crop = DefaultCrop()
	}
	content := nq.Content
	if len(content) == 0 {
		content = json.RawMessage("[]")
	}
	q := &Question{
		Title:    nq.Title,
		Weight:   nq.Weight,
		ParentID: nq.ParentID,
		Content:  content,
		Crop:     crop,
		handle:   newHandle(),
	}
	if err := o.index.Add(q); err != nil {
		return nil, err
	}
	parent.Children = append(parent.Children, q)
	return q, nil
}

// Remove detaches the selected question, with its subtree, from its parent
// and drops all of them from the index.
func (o *Outline) Remove(sel roster.Selector[*Question]) (*Question, error) {
	q, err := o.Get(sel)
	if err != nil {
		return nil, err
	}
	parent := o.FindByID(q.ParentID)
	if parent == nil || !hasChild(parent, q) {
		// ParentID can lag behind the structure for local-only parents.
		parent = o.root.findParentOf(q)
	}
	if parent == nil {
		return nil, fmt.Errorf("question %s: %w", q.DisplayID(), ErrParentNotFound)
	}
	kept := parent.Children[:0]
	for _, c := range parent.Children {
		if c != q {
			kept = append(kept, c)
		}
	}
	parent.Children = kept
	o.unindex(q)
	return q, nil
}

func hasChild(parent, q *Question) bool {
	for _, c := range parent.Children {
		if c == q {
			return true
		}
	}
	return false
}

func (o *Outline) unindex(q *Question) {
	for _, c := range q.Children {
		o.unindex(c)
	}
	_, _ = o.index.Remove(roster.ByID[*Question](q.UniqueID()))
}

// Filter selects questions for batch removal. Patterns are regular
// expressions anchored at the start of the id or title.
type Filter struct {
	IDPatterns    []string
	TitlePatterns []string
	Questions     []*Question
}

// Match returns the union of pattern-matched and explicitly listed questions,
// each at most once, in index order.
func (o *Outline) Match(f Filter) ([]*Question, error) {
	idRes, err := roster.CompilePatterns(f.IDPatterns)
	if err != nil {
		return nil, fmt.Errorf("id pattern: %w", err)
	}
	titleRes, err := roster.CompilePatterns(f.TitlePatterns)
	if err != nil {
		return nil, fmt.Errorf("title pattern: %w", err)
	}

	selected := make(map[*Question]bool)
	for _, q := range f.Questions {
		stored, err := o.Get(roster.ByEntity(q))
		if err != nil {
			return nil, err
		}
		selected[stored] = true
	}
	for _, q := range o.index.All() {
		if titleRes.MatchAny(q.Title) || (q.ID != nil && idRes.MatchAny(*q.ID)) {
			selected[q] = true
		}
	}

	var out []*Question
	for _, q := range o.index.All() {
		if selected[q] {
			out = append(out, q)
		}
	}
	return out, nil
}

// Serialize returns the root's children as nested documents. The root itself
// is never included.
func (o *Outline) Serialize() []NodeDoc {
	return o.root.serialize().Children
}

// Patch wraps the serialized tree in a full-replacement document.
func (o *Outline) Patch() Patch {
	return Patch{QuestionData: o.Serialize()}
}

// Walk visits every question in pre-order with its depth (top level is 0).
func (o *Outline) Walk(fn func(q *Question, depth int)) {
	var walk func(qs []*Question, depth int)
	walk = func(qs []*Question, depth int) {
		for _, q := range qs {
			fn(q, depth)
			walk(q.Children, depth+1)
		}
	}
	walk(o.root.Children, 0)
}
