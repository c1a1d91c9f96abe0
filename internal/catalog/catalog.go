package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var ErrCatalogLoad = errors.New("catalog load error")

// CatalogLoadError is returned for a catalog that cannot be read or has an
// unexpected shape. No complex can be selected until a valid catalog is loaded.
type CatalogLoadError struct {
	Reason string
	Err    error
}

func (e *CatalogLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog load: %s: %s", e.Reason, e.Err)
	}
	return "catalog load: " + e.Reason
}

func (e *CatalogLoadError) Unwrap() error {
	return e.Err
}

func (e *CatalogLoadError) Is(target error) bool {
	return target == ErrCatalogLoad
}

func loadErr(err error, format string, args ...any) error {
	return &CatalogLoadError{Reason: fmt.Sprintf(format, args...), Err: err}
}

type Exercise struct {
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	Reps        Label  `json:"reps"`
	Type        string `json:"type"`
	Weight      Label  `json:"weight"`
	Description string `json:"description"`
	Tips        string `json:"tips"`
}

type Complex struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// TotalTargetSets sums the target set count of every exercise in the complex.
func (c Complex) TotalTargetSets() int {
	total := 0
	for _, e := range c.Exercises {
		total += e.Sets
	}
	return total
}

// Catalog is the immutable, ordered list of exercise complexes.
type Catalog struct {
	complexes []Complex
	byID      map[string]int
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadErr(err, "open %s", path)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a catalog: a JSON array of {id, complex, exercises}.
// The display name may also come as "name", ids may be numbers.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, loadErr(err, "read")
	}

	var raw []rawComplex
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, loadErr(err, "decode")
	}
	if len(raw) == 0 {
		return nil, loadErr(nil, "no complexes")
	}

	c := &Catalog{
		complexes: make([]Complex, 0, len(raw)),
		byID:      make(map[string]int, len(raw)),
	}
	for i, rc := range raw {
		complex, err := rc.toComplex()
		if err != nil {
			return nil, loadErr(err, "complex #%d", i)
		}
		if _, exists := c.byID[complex.ID]; exists {
			return nil, loadErr(nil, "duplicate complex id [%s]", complex.ID)
		}
		c.byID[complex.ID] = len(c.complexes)
		c.complexes = append(c.complexes, complex)
	}

	return c, nil
}

// New builds a catalog from already typed complexes, applying the same checks as Load.
func New(complexes []Complex) (*Catalog, error) {
	data, err := json.Marshal(complexes)
	if err != nil {
		return nil, loadErr(err, "encode")
	}
	return Load(bytes.NewReader(data))
}

func (c *Catalog) Complex(id string) (Complex, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Complex{}, false
	}
	return c.complexes[i], true
}

// Complexes returns the complexes in catalog order.
func (c *Catalog) Complexes() []Complex {
	out := make([]Complex, len(c.complexes))
	copy(out, c.complexes)
	return out
}

func (c *Catalog) Len() int {
	return len(c.complexes)
}

type rawComplex struct {
	ID        json.RawMessage `json:"id"`
	Complex   string          `json:"complex"`
	Name      string          `json:"name"`
	Exercises []rawExercise   `json:"exercises"`
}

type rawExercise struct {
	Name        string          `json:"name"`
	Sets        json.RawMessage `json:"sets"`
	Reps        Label           `json:"reps"`
	Type        string          `json:"type"`
	Weight      Label           `json:"weight"`
	Description string          `json:"description"`
	Tips        string          `json:"tips"`
}

func (rc rawComplex) toComplex() (Complex, error) {
	id, err := idFromRaw(rc.ID)
	if err != nil {
		return Complex{}, err
	}

	name := strings.TrimSpace(rc.Complex)
	if name == "" {
		name = strings.TrimSpace(rc.Name)
	}
	if name == "" {
		name = "Complex " + id
	}

	if len(rc.Exercises) == 0 {
		return Complex{}, fmt.Errorf("complex [%s] has no exercises", id)
	}

	complex := Complex{
		ID:        id,
		Name:      name,
		Exercises: make([]Exercise, 0, len(rc.Exercises)),
	}
	seenNames := make(map[string]bool, len(rc.Exercises))
	for i, re := range rc.Exercises {
		exName := strings.TrimSpace(re.Name)
		if exName == "" {
			return Complex{}, fmt.Errorf("complex [%s] exercise #%d: empty name", id, i)
		}
		// summaries are keyed by exercise name
		if seenNames[exName] {
			return Complex{}, fmt.Errorf("complex [%s]: duplicate exercise [%s]", id, exName)
		}
		seenNames[exName] = true

		sets, err := intFromRaw(re.Sets)
		if err != nil {
			return Complex{}, fmt.Errorf("complex [%s] exercise [%s] sets: %w", id, exName, err)
		}
		if sets < 0 {
			return Complex{}, fmt.Errorf("complex [%s] exercise [%s]: negative sets", id, exName)
		}

		complex.Exercises = append(complex.Exercises, Exercise{
			Name:        exName,
			Sets:        sets,
			Reps:        re.Reps,
			Type:        re.Type,
			Weight:      re.Weight,
			Description: re.Description,
			Tips:        re.Tips,
		})
	}

	return complex, nil
}

func idFromRaw(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errors.New("missing id")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return "", errors.New("empty id")
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}

	return "", fmt.Errorf("id must be a string or a number, got %s", raw)
}

func intFromRaw(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		i, err := strconv.Atoi(n.String())
		if err != nil {
			return 0, fmt.Errorf("not an integer: %s", n)
		}
		return i, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", s)
		}
		return i, nil
	}

	return 0, fmt.Errorf("unexpected value %s", raw)
}
