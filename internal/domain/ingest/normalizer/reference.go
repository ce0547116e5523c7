package normalizer

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"gopkg.in/yaml.v3"
)

//go:embed reference.yaml
var embeddedReference []byte

// Reference is read-only lookup data shared by every parse.
type Reference struct {
	Regions      []string `yaml:"regions"`
	Districts    []string `yaml:"districts"`
	Crops        []string `yaml:"crops"`
	PoultryTypes []string `yaml:"poultry_types"`

	districtIndex map[string]string
	cropIndex     map[string]string
}

var defaultReference = sync.OnceValues(func() (*Reference, error) {
	return ParseReference(embeddedReference)
})

// DefaultReference returns the reference data compiled into the binary.
func DefaultReference() *Reference {
	ref, err := defaultReference()
	if err != nil {
		panic(fmt.Sprintf("normalizer: embedded reference data: %v", err))
	}
	return ref
}

// ParseReference decodes YAML reference data.
func ParseReference(data []byte) (*Reference, error) {
	var ref Reference
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return nil, fmt.Errorf("failed to decode reference data: %w", err)
	}
	ref.index()
	return &ref, nil
}

// LoadReference reads reference data from r.
func LoadReference(r io.Reader) (*Reference, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference data: %w", err)
	}
	return ParseReference(data)
}

// LoadReferenceFile reads reference data from path. An empty path yields the
// embedded defaults.
func LoadReferenceFile(path string) (*Reference, error) {
	if path == "" {
		return DefaultReference(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference data: %w", err)
	}
	defer f.Close()
	return LoadReference(f)
}

func (r *Reference) index() {
	r.districtIndex = make(map[string]string, len(r.Districts))
	for _, d := range r.Districts {
		r.districtIndex[strings.ToLower(strings.TrimSpace(d))] = d
	}
	r.cropIndex = make(map[string]string, len(r.Crops))
	for _, c := range r.Crops {
		r.cropIndex[strings.ToLower(strings.TrimSpace(c))] = c
	}
}

// KnownDistrict reports whether name is a listed district, ignoring case.
func (r *Reference) KnownDistrict(name string) bool {
	_, ok := r.districtIndex[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// KnownCrop reports whether name is a listed crop, ignoring case.
func (r *Reference) KnownCrop(name string) bool {
	_, ok := r.cropIndex[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// SuggestDistrict returns the closest listed district for an unrecognized
// name, or "" when nothing is close.
func (r *Reference) SuggestDistrict(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || len(r.Districts) == 0 {
		return ""
	}

	// Abbreviated names such as "Kumasi" are subsequences of the full name.
	ranks := fuzzy.RankFindNormalizedFold(name, r.Districts)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	// Typos fall back to edit distance.
	lower := strings.ToLower(name)
	best, bestDist := "", max(2, len(name)/4)+1
	for _, d := range r.Districts {
		dist := fuzzy.LevenshteinDistance(lower, strings.ToLower(d))
		if dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}
