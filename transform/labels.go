package transform

import common "fqc_viz_go/utils"

// ApplyLabels returns one display label per filename. An override is used when its key is
// one of the filenames; any other override is ignored. Names without an override keep the
// filename with its FastQC and FASTQ suffixes stripped.
func ApplyLabels(filenames []string, overrides map[string]string) []string {
	out := make([]string, len(filenames))
	for i, name := range filenames {
		if label, ok := overrides[name]; ok && label != "" {
			out[i] = label
			continue
		}
		out[i] = common.SampleName(name)
	}
	return out
}

// LabelMap is ApplyLabels keyed by filename.
func LabelMap(filenames []string, overrides map[string]string) map[string]string {
	labels := ApplyLabels(filenames, overrides)
	out := make(map[string]string, len(filenames))
	for i, name := range filenames {
		out[name] = labels[i]
	}
	return out
}
