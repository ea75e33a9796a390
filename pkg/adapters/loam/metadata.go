package loam

// DefinitionMetadata is the frontmatter of one definition document. Tags match
// the keys authors write in Markdown, YAML or JSON files.
type DefinitionMetadata struct {
	ID         int    `json:"id" mapstructure:"id"`
	Parent     int    `json:"parent" mapstructure:"parent"`
	Order      int    `json:"order" mapstructure:"order"`
	Name       string `json:"name" mapstructure:"name"`
	Label      string `json:"label" mapstructure:"label"`
	Kind       string `json:"kind" mapstructure:"kind"`
	Multiple   bool   `json:"multiple" mapstructure:"multiple"`
	Key        bool   `json:"key" mapstructure:"key"`
	NumberType string `json:"number_type" mapstructure:"number_type"`
	SRS        string `json:"srs" mapstructure:"srs"`

	// Codes is either a list of {code, label} maps or a list of "CODE=Label"
	// strings.
	Codes []any `json:"codes" mapstructure:"codes"`
}
