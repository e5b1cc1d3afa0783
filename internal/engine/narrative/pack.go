package narrative

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
)

//go:embed packs/pack.schema.json
var packSchemaSource string

//go:embed packs/builtin.yaml
var builtinPackSource []byte

var packSchema = jsonschema.MustCompileString("pack.schema.json", packSchemaSource)

// Pack is a set of event templates plus the token lists they draw from
type Pack struct {
	Tokens    map[string][]string `json:"tokens,omitempty"`
	Templates []Template          `json:"templates"`
}

// Template describes one kind of event before placeholders are filled
type Template struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Rarity      float64          `json:"rarity"`
	Triggers    Triggers         `json:"triggers,omitempty"`
	Choices     []ChoiceTemplate `json:"choices"`
}

// Triggers gate when a template may be picked. Zero fields do not gate.
type Triggers struct {
	MinDay  int                `json:"min_day,omitempty"`
	MaxDay  int                `json:"max_day,omitempty"`
	Weather []survival.Weather `json:"weather_conditions,omitempty"`
}

// Allows reports whether the template may fire on day under weather
func (t Triggers) Allows(day int, weather survival.Weather) bool {
	if t.MinDay > 0 && day < t.MinDay {
		return false
	}
	if t.MaxDay > 0 && day > t.MaxDay {
		return false
	}
	if len(t.Weather) == 0 {
		return true
	}
	for _, w := range t.Weather {
		if w == weather {
			return true
		}
	}
	return false
}

// ChoiceTemplate becomes a survival.Choice when an event is generated
type ChoiceTemplate struct {
	Text        string            `json:"text"`
	SuccessRate float64           `json:"success_rate,omitempty"`
	Outcome     survival.Outcome  `json:"outcome"`
	Failure     *survival.Outcome `json:"failure,omitempty"`
}

// ParsePack decodes a YAML or JSON pack and validates it against the
// embedded schema
func ParsePack(data []byte) (*Pack, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.InvalidArgumentf("pack is not valid yaml or json: %v", err)
	}
	if raw == nil {
		return nil, errors.InvalidArgument("pack is empty")
	}

	// Round trip through JSON so the validator sees JSON types
	doc, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to normalize pack")
	}
	var normalized any
	if err := json.Unmarshal(doc, &normalized); err != nil {
		return nil, errors.Wrap(err, "failed to normalize pack")
	}
	if err := packSchema.Validate(normalized); err != nil {
		return nil, errors.InvalidArgumentf("pack failed schema validation: %v", err)
	}

	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	var pack Pack
	if err := dec.Decode(&pack); err != nil {
		return nil, errors.Wrap(err, "failed to decode pack")
	}
	return &pack, nil
}

// LoadPackFile reads a pack from disk
func LoadPackFile(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("template pack %s not found", path)
		}
		return nil, errors.Wrapf(err, "failed to read template pack %s", path)
	}
	pack, err := ParsePack(data)
	if err != nil {
		return nil, errors.Wrapf(err, "template pack %s", path)
	}
	return pack, nil
}

// BuiltinPack returns the templates shipped with the binary
func BuiltinPack() *Pack {
	pack, err := ParsePack(builtinPackSource)
	if err != nil {
		panic("builtin event pack is invalid: " + err.Error())
	}
	return pack
}
