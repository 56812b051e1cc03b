package common

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ReadLabels loads a YAML mapping of report filename to display label:
//
//	sample1_fastqc.zip: Tumour
//	sample2_fastqc.zip: Normal
func ReadLabels(file string) (map[string]string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read label file")
	}
	labels := map[string]string{}
	if err := yaml.Unmarshal(data, &labels); err != nil {
		return nil, errors.Wrapf(err, "failed to parse label file %s", file)
	}
	return labels, nil
}
