package outline

import "encoding/json"

// NodeDoc is the nested wire representation of one outline node. Inbound
// documents carry Type and ParentID; outbound documents omit both.
type NodeDoc struct {
	ID       *string         `json:"id"`
	Title    string          `json:"title"`
	Weight   float64         `json:"weight"`
	Type     string          `json:"type,omitempty"`
	ParentID *string         `json:"parent_id,omitempty"`
	Content  json.RawMessage `json:"content"`
	Crop     []CropRect      `json:"crop_rect_list"`
	Children []NodeDoc       `json:"children"`
}

// Patch is the full-replacement document for an assignment outline.
type Patch struct {
	Assignment   PatchAssignment `json:"assignment"`
	QuestionData []NodeDoc       `json:"question_data"`
}

// PatchAssignment carries the identification regions, which are always
// cleared by an outline replacement.
type PatchAssignment struct {
	IdentificationRegions IdentificationRegions `json:"identification_regions"`
}

type IdentificationRegions struct {
	Name *CropRect `json:"name"`
	SID  *CropRect `json:"sid"`
}
