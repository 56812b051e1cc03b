package config

// Version system:
// vMAJOR.MINOR.PATCH

// Centralized version control
const (
	// Executable
	Main_version = "v0.3.0"

	// Modular tools
	Benchmark     = "v1.1.0"
	Report_Parser = "v0.3.0"
	Charts        = "v0.2.0"
	FASTQC_Mimic  = "v0.2.0"
)
