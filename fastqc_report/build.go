package fastqc_report

// NewReport assembles a report from modules built in memory (the FASTQ mimic uses it).
// Modules must follow the layout; missing ones are added empty, unknown ones are an error.
func NewReport(filename, version string, modules []*Module) (*Report, error) {
	layout, ok := LayoutFor(version)
	if !ok {
		return nil, &UnsupportedVersionError{Filename: filename, Version: version}
	}
	byName := map[string]*Module{}
	for _, m := range modules {
		if _, known := layout.Schema(m.Name); !known {
			return nil, &MissingModuleError{Module: m.Name, Filename: filename, Version: version}
		}
		byName[m.Name] = m
	}

	r := &Report{Filename: filename, Version: version, Layout: layout}
	for i := range layout.Modules {
		schema := &layout.Modules[i]
		m, ok := byName[schema.Name]
		if !ok {
			m = &Module{Name: schema.Name, Title: schema.Title, Table: Table{Fields: schema.Fields}}
		}
		for j := range m.Table.Rows {
			m.Table.Rows[j].Filename = filename
		}
		r.modules = append(r.modules, m)
	}
	return r, nil
}
