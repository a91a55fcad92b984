package outline

import (
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/scopesync/internal/domain"
)

// rootTitle marks the synthetic root. It is never transmitted.
const rootTitle = "__ROOT__"

// CropRect is one crop region of a question on the template.
type CropRect struct {
	X1         float64 `json:"x1" yaml:"x1"`
	X2         float64 `json:"x2" yaml:"x2"`
	Y1         float64 `json:"y1" yaml:"y1"`
	Y2         float64 `json:"y2" yaml:"y2"`
	PageNumber int     `json:"page_number" yaml:"page_number"`
}

// DefaultCrop is a 0x0 region on the first page.
func DefaultCrop() []CropRect {
	return []CropRect{{PageNumber: 1}}
}

// Question is one node of an assignment outline. A parent exclusively owns
// its Children; ParentID is a back-reference only.
type Question struct {
	ID       *string // nil until the remote service assigns one
	Title    string
	Weight   float64
	Type     domain.QuestionType
	ParentID *string
	Content  json.RawMessage
	Crop     []CropRect
	Children []*Question

	handle string // stands in for ID in the flat index while ID is nil
}

// Name implements roster.Entity.
func (q *Question) Name() string { return q.Title }

// UniqueID implements roster.Entity. Local-only questions are keyed by their
// temporary handle.
func (q *Question) UniqueID() string {
	if q.ID != nil {
		return *q.ID
	}
	return q.handle
}

// Format implements roster.Entity.
func (q *Question) Format() string {
	return fmt.Sprintf("%s: %s", q.DisplayID(), q.Title)
}

// DisplayID returns the remote id, or "(pending)" for local-only questions.
func (q *Question) DisplayID() string {
	if q.ID == nil {
		return "(pending)"
	}
	return *q.ID
}

// IsLocal reports whether the question has not yet been assigned a remote id.
func (q *Question) IsLocal() bool {
	return q.ID == nil
}

// findByID searches the subtree rooted at q in pre-order.
func (q *Question) findByID(id string) *Question {
	if q.ID != nil && *q.ID == id {
		return q
	}
	for _, c := range q.Children {
		if found := c.findByID(id); found != nil {
			return found
		}
	}
	return nil
}

// findParentOf returns the structural parent of target within q's subtree.
func (q *Question) findParentOf(target *Question) *Question {
	for _, c := range q.Children {
		if c == target {
			return q
		}
		if found := c.findParentOf(target); found != nil {
			return found
		}
	}
	return nil
}

func (q *Question) serialize() NodeDoc {
	children := make([]NodeDoc, 0, len(q.Children))
	for _, c := range q.Children {
		children = append(children, c.serialize())
	}
	content := q.Content
	if len(content) == 0 {
		content = json.RawMessage("[]")
	}
	crop := q.Crop
	if crop == nil {
		crop = []CropRect{}
	}
	return NodeDoc{
		ID:       q.ID,
		Title:    q.Title,
		Weight:   q.Weight,
		Crop:     crop,
		Content:  content,
		Children: children,
	}
}
