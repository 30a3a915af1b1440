package policy

import (
	"fmt"
)

// Component is one node of the fixed verification tree.
type Component int

const (
	EKYC Component = iota
	DocumentVerify
	DocumentAuthenticity
	DocumentQuality
	OCRConfidence
	FrontBackIDMatch
	FaceLiveness
	FaceMatching
	PassivePhoto
	DataMatch
	IDNumber
	NameMatching
	DOB
	IssuanceDate
	ExpiryDate
	Gender
	DeviceRisk
	Compliance

	componentCount
)

var componentNames = [componentCount]string{
	EKYC:                 "ekyc",
	DocumentVerify:       "document_verify",
	DocumentAuthenticity: "document_authenticity",
	DocumentQuality:      "document_quality",
	OCRConfidence:        "ocr_confidence",
	FrontBackIDMatch:     "front_back_id_match",
	FaceLiveness:         "face_liveness",
	FaceMatching:         "face_matching",
	PassivePhoto:         "passive_photo",
	DataMatch:            "data_match",
	IDNumber:             "id_number",
	NameMatching:         "name_matching",
	DOB:                  "dob",
	IssuanceDate:         "issuance_date",
	ExpiryDate:           "expiry_date",
	Gender:               "gender",
	DeviceRisk:           "device_risk",
	Compliance:           "compliance",
}

func (c Component) String() string {
	if c < 0 || c >= componentCount {
		return fmt.Sprintf("component(%d)", int(c))
	}
	return componentNames[c]
}

func (c Component) Valid() bool {
	return c >= 0 && c < componentCount
}

func ParseComponent(name string) (Component, bool) {
	for i, n := range componentNames {
		if n == name {
			return Component(i), true
		}
	}
	return 0, false
}

func (c Component) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown component %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Component) UnmarshalText(text []byte) error {
	parsed, ok := ParseComponent(string(text))
	if !ok {
		return fmt.Errorf("unknown component %q", string(text))
	}
	*c = parsed
	return nil
}

// Components lists every component in tree (pre-)order.
func Components() []Component {
	out := make([]Component, componentCount)
	for i := range out {
		out[i] = Component(i)
	}
	return out
}

// node is an arena entry. Pre-order layout puts every child after its parent,
// so a reverse walk visits children before their category.
type node struct {
	parent   int
	children []int
}

var arena = buildArena()

func buildArena() [componentCount]node {
	parents := map[Component]Component{
		DocumentVerify:       EKYC,
		DocumentAuthenticity: DocumentVerify,
		DocumentQuality:      DocumentVerify,
		OCRConfidence:        DocumentVerify,
		FrontBackIDMatch:     DocumentVerify,
		FaceLiveness:         EKYC,
		FaceMatching:         FaceLiveness,
		PassivePhoto:         FaceLiveness,
		DataMatch:            EKYC,
		IDNumber:             DataMatch,
		NameMatching:         DataMatch,
		DOB:                  DataMatch,
		IssuanceDate:         DataMatch,
		ExpiryDate:           DataMatch,
		Gender:               DataMatch,
		DeviceRisk:           EKYC,
		Compliance:           EKYC,
	}
	var nodes [componentCount]node
	nodes[EKYC].parent = -1
	for _, c := range Components()[1:] {
		p := parents[c]
		nodes[c].parent = int(p)
		nodes[p].children = append(nodes[p].children, int(c))
	}
	return nodes
}

// Parent returns the category c belongs to; the root has none.
func (c Component) Parent() (Component, bool) {
	p := arena[c].parent
	if p < 0 {
		return 0, false
	}
	return Component(p), true
}

func (c Component) Children() []Component {
	out := []Component{}
	for _, i := range arena[c].children {
		out = append(out, Component(i))
	}
	return out
}

func (c Component) IsLeaf() bool {
	return len(arena[c].children) == 0
}

func (c Component) Depth() int {
	depth := 0
	for p := arena[c].parent; p >= 0; p = arena[p].parent {
		depth++
	}
	return depth
}
