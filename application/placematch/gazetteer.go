package placematch

import (
	_ "embed"
	"sync"

	"ekyc.io/application/namematch"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed yemen_locations.yaml
var yemenLocations []byte

type governorateEntry struct {
	Name      string   `yaml:"name"`
	NameEN    string   `yaml:"name_en"`
	Variants  []string `yaml:"variants"`
	Districts []string `yaml:"districts"`
}

// Gazetteer resolves normalised place tokens to governorates and districts.
type Gazetteer struct {
	// normalised spelling -> canonical governorate
	governorates map[string]string
	// normalised district -> canonical governorate
	districts map[string]string
}

// Kind classifies a token against the gazetteer.
type Kind string

const (
	KindGovernorate Kind = "governorate"
	KindDistrict    Kind = "district"
	KindUnknown     Kind = "unknown"
)

type Token struct {
	Text        string `json:"text"`
	Kind        Kind   `json:"kind"`
	Governorate string `json:"governorate,omitempty"`
}

// ParseGazetteer reads the YAML governorate list. Governorate names win over a
// district of the same spelling; a district listed twice keeps its first owner.
func ParseGazetteer(data []byte) (*Gazetteer, error) {
	var doc struct {
		Governorates []governorateEntry `yaml:"governorates"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "placematch: parse gazetteer")
	}
	if len(doc.Governorates) == 0 {
		return nil, eris.New("placematch: gazetteer has no governorates")
	}
	g := &Gazetteer{governorates: map[string]string{}, districts: map[string]string{}}
	for _, gov := range doc.Governorates {
		spellings := append([]string{gov.Name, gov.NameEN}, gov.Variants...)
		for _, s := range spellings {
			if key := namematch.Normalize(s); key != "" {
				g.governorates[key] = gov.Name
			}
		}
	}
	for _, gov := range doc.Governorates {
		for _, d := range gov.Districts {
			key := namematch.Normalize(d)
			if key == "" {
				continue
			}
			if _, taken := g.districts[key]; !taken {
				g.districts[key] = gov.Name
			}
		}
	}
	return g, nil
}

var (
	defaultGazetteer    *Gazetteer
	defaultGazetteerErr error
	gazetteerOnce       sync.Once
)

// DefaultGazetteer is the embedded Yemen governorate list, parsed once.
func DefaultGazetteer() (*Gazetteer, error) {
	gazetteerOnce.Do(func() {
		defaultGazetteer, defaultGazetteerErr = ParseGazetteer(yemenLocations)
	})
	return defaultGazetteer, defaultGazetteerErr
}

// Classify looks a normalised token up, governorates first.
func (g *Gazetteer) Classify(token string) Token {
	if gov, ok := g.governorates[token]; ok {
		return Token{Text: gov, Kind: KindGovernorate, Governorate: gov}
	}
	if gov, ok := g.districts[token]; ok {
		return Token{Text: token, Kind: KindDistrict, Governorate: gov}
	}
	return Token{Text: token, Kind: KindUnknown}
}
