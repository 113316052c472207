package report

import (
	"io"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/eteq/saga-salt/redshift"
)

// SummaryFile is the name the CLI gives the YAML summary.
const SummaryFile = "redshift_results.yaml"

// Summary is the YAML form of a search result.
type Summary struct {
	RunID             string            `yaml:"run_id"`
	BestTemplateIndex int               `yaml:"best_template_index"`
	Best              BestSummary       `yaml:"best"`
	Templates         []TemplateSummary `yaml:"templates"`
}

// BestSummary holds the headline (z, velocity, template) triple.
type BestSummary struct {
	Z            float64 `yaml:"z"`
	VelocityKMS  float64 `yaml:"velocity_kms"`
	TemplateName string  `yaml:"template_name"`
}

// TemplateSummary holds one template's best trial.
type TemplateSummary struct {
	Index       int     `yaml:"index"`
	Name        string  `yaml:"name"`
	BestZ       float64 `yaml:"best_z"`
	BestScore   float64 `yaml:"best_score"`
	VelocityKMS float64 `yaml:"velocity_kms"`
}

// Summarize converts a result to its YAML document form.
func Summarize(result *redshift.Result) Summary {
	s := Summary{
		RunID:             result.RunID.String(),
		BestTemplateIndex: result.BestTemplateIndex,
		Best: BestSummary{
			Z:            result.Summary.BestZ,
			VelocityKMS:  result.Summary.Velocity,
			TemplateName: result.Summary.TemplateName,
		},
		Templates: make([]TemplateSummary, 0, len(result.Ordered)),
	}
	for _, tr := range result.Ordered {
		s.Templates = append(s.Templates, TemplateSummary{
			Index:       tr.Template.Index,
			Name:        tr.Template.Name,
			BestZ:       tr.BestZ,
			BestScore:   tr.BestScore,
			VelocityKMS: tr.Velocity,
		})
	}
	return s
}

// WriteSummary writes the YAML summary of result to w.
func WriteSummary(w io.Writer, result *redshift.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Summarize(result)); err != nil {
		return errors.Wrap(err, "report: encode summary")
	}
	return errors.Wrap(enc.Close(), "report: flush summary")
}

// ReadSummary decodes a summary written by WriteSummary.
func ReadSummary(r io.Reader) (Summary, error) {
	var s Summary
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return Summary{}, errors.Wrap(err, "report: decode summary")
	}
	return s, nil
}
